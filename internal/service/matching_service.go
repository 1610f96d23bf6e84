package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/Freeeeeet/signbridge/internal/model"
	"github.com/Freeeeeet/signbridge/internal/timerange"
	"go.uber.org/zap"
)

// DefaultPageSize размер выдачи поиска по умолчанию
const DefaultPageSize = 5

// profileFilter один шаг отбора кандидатов
type profileFilter struct {
	name string
	keep func(p *model.InterpreterProfile) bool
}

type MatchingService struct {
	interpreters InterpreterStore
	validator    *BookingValidator
	pageSize     int
	logger       *zap.Logger
	now          func() time.Time
}

func NewMatchingService(interpreters InterpreterStore, validator *BookingValidator, pageSize int, logger *zap.Logger) *MatchingService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &MatchingService{
		interpreters: interpreters,
		validator:    validator,
		pageSize:     pageSize,
		logger:       logger,
		now:          time.Now,
	}
}

// Search подбирает свободных подходящих переводчиков, лучшие по рейтингу первыми.
// Пустой результат не является ошибкой.
func (s *MatchingService) Search(ctx context.Context, criteria model.SearchCriteria) ([]*model.InterpreterProfile, error) {
	if err := validateCriteria(criteria); err != nil {
		return nil, err
	}

	candidates, err := s.interpreters.FindCandidates(ctx, criteria)
	if err != nil {
		return nil, storeErr("find candidates", err)
	}

	today := timerange.DayStart(s.now().In(s.validator.Location()))
	matched := applyFilters(candidates, criteriaFilters(criteria, today))

	available := make([]*model.InterpreterProfile, 0, len(matched))
	for _, p := range matched {
		verdict, err := s.validator.IsBookable(ctx, p.ID, criteria.Start, criteria.End)
		if err != nil {
			return nil, err
		}
		if verdict.Bookable {
			available = append(available, p)
		}
	}

	rankProfiles(available, criteria.Gender == nil)

	limit := criteria.Limit
	if limit <= 0 || limit > s.pageSize {
		limit = s.pageSize
	}
	if len(available) > limit {
		available = available[:limit]
	}

	s.logger.Debug("Interpreter search",
		zap.Int64("specialisation_id", criteria.SpecialisationID),
		zap.Int64("language_id", criteria.LanguageID),
		zap.String("location", criteria.Location),
		zap.Int("candidates", len(candidates)),
		zap.Int("results", len(available)),
	)

	return available, nil
}

func validateCriteria(c model.SearchCriteria) error {
	switch {
	case c.SpecialisationID <= 0:
		return invalid("specialisation_id", "is required")
	case c.LanguageID <= 0:
		return invalid("language_id", "is required")
	case strings.TrimSpace(c.Location) == "":
		return invalid("location", "is required")
	case c.Start.IsZero() || c.End.IsZero():
		return invalid("start", "appointment window is required")
	case !c.End.After(c.Start):
		return invalid("end", "must be after start")
	case c.MinRating < 0 || c.MinRating > model.MaxRatingScore:
		return invalid("min_rating", "must be between 0 and %d", model.MaxRatingScore)
	}
	if c.Age != nil && (c.Age.Start < 0 || c.Age.End < c.Age.Start) {
		return invalid("age", "range must satisfy 0 <= start <= end")
	}
	return nil
}

// criteriaFilters собирает цепочку фильтров по критериям поиска
func criteriaFilters(c model.SearchCriteria, today time.Time) []profileFilter {
	filters := []profileFilter{
		{name: "qualification", keep: func(p *model.InterpreterProfile) bool {
			return p.HasSpecialisation(c.SpecialisationID) && p.HasLanguage(c.LanguageID)
		}},
		{name: "location", keep: func(p *model.InterpreterProfile) bool {
			return p.Location == c.Location
		}},
	}

	if c.Age != nil {
		minDOB, maxDOB := c.Age.DOBWindow(today)
		filters = append(filters, profileFilter{name: "age", keep: func(p *model.InterpreterProfile) bool {
			if p.DateOfBirth == nil {
				return false
			}
			dob := dateIn(*p.DateOfBirth, today.Location())
			return dob.After(minDOB) && dob.Before(maxDOB)
		}})
	}

	if c.Gender != nil {
		gender := *c.Gender
		filters = append(filters, profileFilter{name: "gender", keep: func(p *model.InterpreterProfile) bool {
			return p.Gender != nil && strings.EqualFold(*p.Gender, gender)
		}})
	}

	filters = append(filters, profileFilter{name: "rating", keep: func(p *model.InterpreterProfile) bool {
		return p.RatingValue() >= c.MinRating
	}})

	return filters
}

func applyFilters(profiles []*model.InterpreterProfile, filters []profileFilter) []*model.InterpreterProfile {
	kept := make([]*model.InterpreterProfile, 0, len(profiles))
next:
	for _, p := range profiles {
		for _, f := range filters {
			if !f.keep(p) {
				continue next
			}
		}
		kept = append(kept, p)
	}
	return kept
}

// rankProfiles сортирует по рейтингу (без рейтинга в конце),
// при равенстве по полу если фильтра по полу не было
func rankProfiles(profiles []*model.InterpreterProfile, byGender bool) {
	sort.SliceStable(profiles, func(i, j int) bool {
		a, b := profiles[i], profiles[j]
		if a.RatingValue() != b.RatingValue() {
			return a.RatingValue() > b.RatingValue()
		}
		if (a.Rating == nil) != (b.Rating == nil) {
			return a.Rating != nil
		}
		if byGender {
			return genderOf(a) < genderOf(b)
		}
		return false
	})
}

func genderOf(p *model.InterpreterProfile) string {
	if p.Gender == nil {
		return ""
	}
	return *p.Gender
}

// dateIn переносит календарную дату t в часовой пояс loc
func dateIn(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
