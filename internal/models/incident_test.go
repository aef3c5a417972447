package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestIncident_Tally(t *testing.T) {
	inc := &Incident{
		Votes: []Vote{
			{UserID: "a", VoteType: VoteUp},
			{UserID: "b", VoteType: VoteDown},
			{UserID: "c", VoteType: VoteDown},
		},
		UpvoteCount: 10,
	}
	inc.Tally()

	assert.Equal(t, 1, inc.UpvoteCount)
	assert.Equal(t, 2, inc.DownvoteCount)
	assert.Equal(t, -1, inc.Score())
}

func TestSortByScore_StableOnTies(t *testing.T) {
	first := &Incident{Description: "first", UpvoteCount: 1}
	second := &Incident{Description: "second", UpvoteCount: 3}
	third := &Incident{Description: "third", UpvoteCount: 2, DownvoteCount: 1}
	fourth := &Incident{Description: "fourth", DownvoteCount: 2}

	incidents := []*Incident{first, second, third, fourth}
	SortByScore(incidents)

	assert.Equal(t, []*Incident{second, first, third, fourth}, incidents)
}

func TestIncident_FindComment(t *testing.T) {
	id := uuid.New()
	inc := &Incident{Comments: []Comment{{ID: uuid.New()}, {ID: id, Text: "target"}}}

	c := inc.FindComment(id)
	if assert.NotNil(t, c) {
		assert.Equal(t, "target", c.Text)
	}
	assert.Nil(t, inc.FindComment(uuid.New()))
}

func TestEnumsValid(t *testing.T) {
	assert.True(t, CategoryNaturalDisaster.Valid())
	assert.False(t, IncidentCategory("Meteor").Valid())
	assert.True(t, StatusResolved.Valid())
	assert.False(t, IncidentStatus("active").Valid())
	assert.True(t, VoteDown.Valid())
	assert.False(t, VoteType("sidevote").Valid())
}

func TestWeatherAlert_ActiveDuring(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	endOfDay := day.Add(24*time.Hour - time.Nanosecond)
	before := day.Add(-48 * time.Hour)
	after := day.Add(48 * time.Hour)

	open := &WeatherAlert{}
	assert.True(t, open.ActiveDuring(day, endOfDay))

	expired := &WeatherAlert{StartTime: &before, EndTime: &before}
	assert.False(t, expired.ActiveDuring(day, endOfDay))

	future := &WeatherAlert{StartTime: &after}
	assert.False(t, future.ActiveDuring(day, endOfDay))

	spanning := &WeatherAlert{StartTime: &before, EndTime: &after}
	assert.True(t, spanning.ActiveDuring(day, endOfDay))
}
