package models

import (
	"fmt"
	"strings"
)

type Subject string

const (
	SubjectPython          Subject = "Python"
	SubjectMachineLearning Subject = "Machine Learning"
	SubjectDeepLearning    Subject = "Deep Learning"
)

type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
)

type Style string

const (
	StyleCodeFirst    Style = "Code-first"
	StyleMathematical Style = "Mathematical"
	StyleConceptual   Style = "Conceptual"
)

// Selector options, in the order the UI presents them. The first entry is the
// default selection.
var (
	Subjects = []Subject{SubjectPython, SubjectMachineLearning, SubjectDeepLearning}
	Levels   = []Level{LevelBeginner, LevelIntermediate, LevelAdvanced}
	Styles   = []Style{StyleCodeFirst, StyleMathematical, StyleConceptual}
)

// Profile is the learner profile selected per request.
type Profile struct {
	Subject Subject `json:"subject"`
	Level   Level   `json:"level"`
	Style   Style   `json:"style"`
}

// ProfileRequest is the raw, unvalidated profile as sent by a client.
type ProfileRequest struct {
	Subject string `json:"subject"`
	Level   string `json:"level"`
	Style   string `json:"style"`
}

func DefaultProfile() Profile {
	return Profile{Subject: Subjects[0], Level: Levels[0], Style: Styles[0]}
}

// ParseProfile matches each field case-insensitively against its options.
// Empty fields take the default selection. The returned map names the
// offending fields when any value is unknown.
func ParseProfile(req ProfileRequest) (Profile, map[string]string) {
	p := DefaultProfile()
	fields := make(map[string]string)

	if v, ok := matchOption(req.Subject, Subjects); ok {
		p.Subject = v
	} else {
		fields["subject"] = invalidOption(req.Subject, Subjects)
	}
	if v, ok := matchOption(req.Level, Levels); ok {
		p.Level = v
	} else {
		fields["level"] = invalidOption(req.Level, Levels)
	}
	if v, ok := matchOption(req.Style, Styles); ok {
		p.Style = v
	} else {
		fields["style"] = invalidOption(req.Style, Styles)
	}

	if len(fields) > 0 {
		return p, fields
	}
	return p, nil
}

func matchOption[T ~string](raw string, options []T) (T, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return options[0], true
	}
	for _, o := range options {
		if strings.EqualFold(raw, string(o)) {
			return o, true
		}
	}
	return options[0], false
}

func invalidOption[T ~string](raw string, options []T) string {
	names := make([]string, len(options))
	for i, o := range options {
		names[i] = string(o)
	}
	return fmt.Sprintf("%q is not one of: %s", raw, strings.Join(names, ", "))
}
