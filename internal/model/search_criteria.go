package model

import "time"

// AgeRange возрастной диапазон в полных годах, включительно
type AgeRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// DOBWindow переводит диапазон возраста в окно дат рождения на дату today.
// Подходят даты строго между minDOB и maxDOB.
func (r AgeRange) DOBWindow(today time.Time) (minDOB, maxDOB time.Time) {
	minDOB = today.AddDate(-(r.End + 1), 0, 0)
	maxDOB = today.AddDate(-r.Start, 0, 0)
	return minDOB, maxDOB
}

// SearchCriteria параметры поиска переводчика. Не сохраняется.
type SearchCriteria struct {
	SpecialisationID int64     `json:"specialisation_id"`
	LanguageID       int64     `json:"language_id"`
	Location         string    `json:"location"`
	Age              *AgeRange `json:"age,omitempty"`    // nil = без фильтра
	Gender           *string   `json:"gender,omitempty"` // nil = любой
	MinRating        float64   `json:"min_rating"`
	Start            time.Time `json:"start"`
	End              time.Time `json:"end"`
	Limit            int       `json:"limit,omitempty"`
}
