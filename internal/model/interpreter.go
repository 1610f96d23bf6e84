package model

// Specialisation область специализации переводчика (медицина, юриспруденция, ...)
type Specialisation struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Language жестовый язык, которым владеет переводчик
type Language struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// InterpreterProfile профиль переводчика с квалификацией и агрегированным рейтингом.
// Для движка подбора только на чтение.
type InterpreterProfile struct {
	User
	Specialisations []int64  `json:"specialisations"`
	Languages       []int64  `json:"languages"`
	Rating          *float64 `json:"rating"` // nil если оценок ещё нет
	RatingCount     int      `json:"rating_count"`
}

// HasSpecialisation проверяет наличие специализации
func (p *InterpreterProfile) HasSpecialisation(id int64) bool {
	return containsID(p.Specialisations, id)
}

// HasLanguage проверяет владение языком
func (p *InterpreterProfile) HasLanguage(id int64) bool {
	return containsID(p.Languages, id)
}

// RatingValue возвращает рейтинг, считая отсутствующий за 0
func (p *InterpreterProfile) RatingValue() float64 {
	if p.Rating == nil {
		return 0
	}
	return *p.Rating
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
