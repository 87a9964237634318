package domain

// ExtractedQuestion is one question recovered from a question paper.
type ExtractedQuestion struct {
	// Text is the cleaned question text.
	Text string `json:"text"`

	// Number is the question number when the paper supplied one, 0
	// otherwise.
	Number int `json:"number,omitempty"`

	// Method names the extraction strategy that matched.
	Method string `json:"method"`

	// Confidence rates how reliable the strategy is, in (0, 1].
	Confidence float64 `json:"confidence"`
}

// PaperAnalysis is the outcome of scanning a question paper: the
// questions found plus whatever metadata the paper exposes.
type PaperAnalysis struct {
	// FilePath is the full path of the paper.
	FilePath string `json:"file_path"`

	// FileName is the base name of the paper.
	FileName string `json:"file_name"`

	// TotalPages is the paper's page count.
	TotalPages int `json:"total_pages"`

	// Questions are the extracted questions in document order.
	Questions []ExtractedQuestion `json:"questions"`

	// DetectedSubject is the keyword-detected subject, empty when the
	// text matched no subject strongly enough.
	DetectedSubject string `json:"detected_subject,omitempty"`

	// Metadata holds recognized header fields (year, semester,
	// course code).
	Metadata map[string]string `json:"metadata,omitempty"`

	// Preview is the opening of the paper text, for display.
	Preview string `json:"preview,omitempty"`
}

// SolvedQuestion pairs one extracted question with its answer, or with
// the failure that prevented one.
type SolvedQuestion struct {
	// Question is the extracted question.
	Question ExtractedQuestion `json:"question"`

	// Result is the answer when solving succeeded.
	Result *QueryResult `json:"result,omitempty"`

	// Err describes the failure when solving did not succeed.
	Err string `json:"error,omitempty"`
}

// Failed reports whether the question could not be answered.
func (s SolvedQuestion) Failed() bool {
	return s.Err != ""
}

// SolveReport is the complete outcome of batch-answering a paper.
type SolveReport struct {
	// Analysis is the paper scan the answers were built from.
	Analysis PaperAnalysis `json:"analysis"`

	// Solved holds one entry per attempted question, in paper order.
	Solved []SolvedQuestion `json:"solved"`

	// SolvedCount is how many questions were answered.
	SolvedCount int `json:"solved_count"`

	// FailedCount is how many questions failed.
	FailedCount int `json:"failed_count"`
}
