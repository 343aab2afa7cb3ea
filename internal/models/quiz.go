package models

// QuizQuestionCount is the fixed number of questions requested per quiz.
const QuizQuestionCount = 5

// QuizState is the last generated quiz. A new quiz replaces it entirely.
type QuizState struct {
	Topic     string `json:"topic"`
	QuizBody  string `json:"quiz_body"`
	LastTopic string `json:"last_topic"`
}

type GenerateQuizRequest struct {
	Topic   string         `json:"topic"`
	Profile ProfileRequest `json:"profile"`
}

type SubmitAnswersRequest struct {
	Answers string `json:"answers"`
}

// QuizEvaluation is the model's grading of a submission.
type QuizEvaluation struct {
	Heading    string `json:"heading"`
	Evaluation string `json:"evaluation"`
}

type QuizResponse struct {
	Quiz           *QuizState      `json:"quiz"`
	LastEvaluation *QuizEvaluation `json:"last_evaluation,omitempty"`
}
