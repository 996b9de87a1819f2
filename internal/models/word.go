package models

import "time"

// Word represents a vocabulary entry
type Word struct {
	ID              int64     `db:"id" json:"id"`
	Word            string    `db:"word" json:"word"`
	Definition      string    `db:"definition" json:"definition"`
	PartOfSpeech    string    `db:"part_of_speech" json:"part_of_speech"`
	ExampleSentence string    `db:"example_sentence" json:"example_sentence"`
	CreatedAt       time.Time `db:"created_at" json:"-"`
}

// DifficultWord is a word the user answers wrong often
type DifficultWord struct {
	Word
	ReviewCount    int `db:"review_count" json:"review_count"`
	CorrectCount   int `db:"correct_count" json:"correct_count"`
	IncorrectCount int `db:"incorrect_count" json:"incorrect_count"`
}

// ErrorRate returns the share of wrong answers in [0, 1]
func (d DifficultWord) ErrorRate() float64 {
	total := d.CorrectCount + d.IncorrectCount
	if total == 0 {
		return 0
	}
	return float64(d.IncorrectCount) / float64(total)
}
