package service

import (
	"context"
	"testing"
	"time"

	"github.com/Freeeeeet/signbridge/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	medical = int64(1)
	auslan  = int64(2)
)

func ptr[T any](v T) *T { return &v }

// addCandidate добавляет переводчика с понедельничным расписанием
func (e *testEnv) addCandidate(rating *float64, gender string, dob time.Time) *model.InterpreterProfile {
	u := e.db.addUser(model.UserRoleInterpreter)
	u.Location = "NSW"
	if gender != "" {
		u.Gender = ptr(gender)
	}
	if !dob.IsZero() {
		u.DateOfBirth = ptr(dob)
	}
	e.mondayShift(u.ID)

	p := &model.InterpreterProfile{
		User:            *u,
		Specialisations: []int64{medical},
		Languages:       []int64{auslan},
		Rating:          rating,
	}
	e.db.profiles[u.ID] = p
	return p
}

func baseCriteria() model.SearchCriteria {
	return model.SearchCriteria{
		SpecialisationID: medical,
		LanguageID:       auslan,
		Location:         "NSW",
		Start:            at(nextMonday, 10, 0),
		End:              at(nextMonday, 11, 0),
	}
}

func ids(profiles []*model.InterpreterProfile) []int64 {
	out := make([]int64, len(profiles))
	for i, p := range profiles {
		out[i] = p.ID
	}
	return out
}

func TestSearch_RanksByRating(t *testing.T) {
	env := newTestEnv(t)
	low := env.addCandidate(ptr(2.0), "female", time.Time{})
	high := env.addCandidate(ptr(5.0), "male", time.Time{})

	got, err := env.matching.Search(context.Background(), baseCriteria())
	require.NoError(t, err)
	assert.Equal(t, []int64{high.ID, low.ID}, ids(got))
}

func TestSearch_AgeRange(t *testing.T) {
	env := newTestEnv(t)
	// 45 лет на 15.10.2026
	env.addCandidate(ptr(4.0), "female", time.Date(1981, 3, 1, 0, 0, 0, 0, time.UTC))
	young := env.addCandidate(ptr(3.0), "female", time.Date(2004, 1, 10, 0, 0, 0, 0, time.UTC))
	env.addCandidate(ptr(5.0), "female", time.Time{})

	c := baseCriteria()
	c.Age = &model.AgeRange{Start: 18, End: 24}

	got, err := env.matching.Search(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, []int64{young.ID}, ids(got))
}

func TestSearch_AgeBoundaries(t *testing.T) {
	env := newTestEnv(t)
	// Ровно 18 сегодня: dob == maxDOB, граница не включается
	env.addCandidate(ptr(4.0), "", time.Date(2008, 10, 15, 0, 0, 0, 0, time.UTC))
	// 18 лет и один день
	in := env.addCandidate(ptr(4.0), "", time.Date(2008, 10, 14, 0, 0, 0, 0, time.UTC))
	// Последний день, когда ещё 24: dob = minDOB + 1 день
	last := env.addCandidate(ptr(4.0), "", time.Date(2001, 10, 16, 0, 0, 0, 0, time.UTC))
	// Исполнилось 25
	env.addCandidate(ptr(4.0), "", time.Date(2001, 10, 15, 0, 0, 0, 0, time.UTC))

	c := baseCriteria()
	c.Age = &model.AgeRange{Start: 18, End: 24}

	got, err := env.matching.Search(context.Background(), c)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{in.ID, last.ID}, ids(got))
}

func TestSearch_GenderFilterAndTieBreak(t *testing.T) {
	env := newTestEnv(t)
	m := env.addCandidate(ptr(4.0), "male", time.Time{})
	f := env.addCandidate(ptr(4.0), "female", time.Time{})

	got, err := env.matching.Search(context.Background(), baseCriteria())
	require.NoError(t, err)
	assert.Equal(t, []int64{f.ID, m.ID}, ids(got), "ties ordered by gender ascending")

	c := baseCriteria()
	c.Gender = ptr("Male")
	got, err = env.matching.Search(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, []int64{m.ID}, ids(got))
}

func TestSearch_MinRatingAndUnrated(t *testing.T) {
	env := newTestEnv(t)
	unrated := env.addCandidate(nil, "", time.Time{})
	rated := env.addCandidate(ptr(3.5), "", time.Time{})

	got, err := env.matching.Search(context.Background(), baseCriteria())
	require.NoError(t, err)
	assert.Equal(t, []int64{rated.ID, unrated.ID}, ids(got), "unrated last")

	c := baseCriteria()
	c.MinRating = 4
	got, err = env.matching.Search(context.Background(), c)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got, "empty list, not nil")

	c.MinRating = 3.5
	got, err = env.matching.Search(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, []int64{rated.ID}, ids(got))
}

func TestSearch_ExcludesUnavailable(t *testing.T) {
	env := newTestEnv(t)
	busy := env.addCandidate(ptr(5.0), "", time.Time{})
	free := env.addCandidate(ptr(3.0), "", time.Time{})
	env.approved(busy.ID, at(nextMonday, 10, 30), at(nextMonday, 11, 30))

	got, err := env.matching.Search(context.Background(), baseCriteria())
	require.NoError(t, err)
	assert.Equal(t, []int64{free.ID}, ids(got))

	c := baseCriteria()
	c.Start, c.End = at(nextMonday, 18, 0), at(nextMonday, 19, 0)
	got, err = env.matching.Search(context.Background(), c)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearch_CapsToPageSize(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 7; i++ {
		env.addCandidate(ptr(float64(i%5)+1), "", time.Time{})
	}

	got, err := env.matching.Search(context.Background(), baseCriteria())
	require.NoError(t, err)
	assert.Len(t, got, DefaultPageSize)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].RatingValue(), got[i].RatingValue())
	}

	c := baseCriteria()
	c.Limit = 2
	got, err = env.matching.Search(context.Background(), c)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSearch_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		mutate func(c *model.SearchCriteria)
		field  string
	}{
		{"no specialisation", func(c *model.SearchCriteria) { c.SpecialisationID = 0 }, "specialisation_id"},
		{"no language", func(c *model.SearchCriteria) { c.LanguageID = 0 }, "language_id"},
		{"no location", func(c *model.SearchCriteria) { c.Location = " " }, "location"},
		{"no window", func(c *model.SearchCriteria) { c.Start = time.Time{} }, "start"},
		{"empty window", func(c *model.SearchCriteria) { c.End = c.Start }, "end"},
		{"rating too high", func(c *model.SearchCriteria) { c.MinRating = 6 }, "min_rating"},
		{"inverted age", func(c *model.SearchCriteria) { c.Age = &model.AgeRange{Start: 30, End: 20} }, "age"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := baseCriteria()
			tt.mutate(&c)

			_, err := env.matching.Search(context.Background(), c)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestSearch_StoreFailure(t *testing.T) {
	env := newTestEnv(t)
	env.db.fail = errStoreDown

	_, err := env.matching.Search(context.Background(), baseCriteria())
	assert.ErrorIs(t, err, ErrStore)
}
