package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bracketlab/scoring-platform/brackets"
	"github.com/bracketlab/scoring-platform/models"
	"github.com/bracketlab/scoring-platform/storage"
)

type fakeBracketService struct {
	view *BracketView
	err  error
}

func (f *fakeBracketService) GenerateAndSaveBracket(context.Context, int) (*BracketView, error) {
	panic("not used")
}

func (f *fakeBracketService) GetBracket(context.Context, int) (*BracketView, error) {
	return f.view, f.err
}

type fakeUploader struct {
	key         string
	contentType string
	body        []byte
	err         error
}

func (f *fakeUploader) Upload(_ context.Context, key, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	f.key = key
	f.contentType = contentType
	f.body = body
	return &storage.UploadResult{Key: key, Location: "https://cdn.example.com/" + key}, nil
}

func (f *fakeUploader) Delete(context.Context, string) error { return nil }

func (f *fakeUploader) GetPublicURL(key string) string { return "https://cdn.example.com/" + key }

func completedMatch(number, p1, p2, s1, s2 int) models.Match {
	return models.Match{
		MatchNumber: number,
		Player1ID:   &p1,
		Player2ID:   &p2,
		Score1:      &s1,
		Score2:      &s2,
		Completed:   true,
	}
}

// completedBracketView plays out a full bracket won by 101 without a reset:
// 102 takes the losers bracket, 103 the losers final loss, and so on down.
func completedBracketView() *BracketView {
	champion := 101
	entrants := make([]models.Entrant, 0, 8)
	names := map[int]string{
		101: "alpha", 102: "bravo", 103: "charlie", 104: "delta",
		105: "echo", 106: "foxtrot", 107: "golf", 108: "hotel",
	}
	for id := 101; id <= 108; id++ {
		entrants = append(entrants, models.Entrant{ID: id, DisplayName: names[id]})
	}

	return &BracketView{
		Tournament: &models.Tournament{
			ID:         7,
			Status:     models.StatusCompleted,
			ChampionID: &champion,
			Entrants:   entrants,
		},
		Matches: []models.Match{
			completedMatch(1, 101, 108, 3, 0),
			completedMatch(2, 104, 105, 3, 1),
			completedMatch(3, 102, 107, 3, 0),
			completedMatch(4, 103, 106, 3, 2),
			completedMatch(5, 101, 104, 3, 1),
			completedMatch(6, 102, 103, 3, 2),
			completedMatch(7, 101, 102, 3, 0),
			completedMatch(8, 108, 105, 1, 3),
			completedMatch(9, 107, 106, 0, 3),
			completedMatch(10, 103, 105, 3, 1),
			completedMatch(11, 104, 106, 3, 2),
			completedMatch(12, 103, 104, 3, 1),
			completedMatch(13, 102, 103, 3, 2),
			completedMatch(16, 101, 102, 3, 1),
		},
		GrandFinalState: brackets.GrandFinalComplete,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExportServiceStandings(t *testing.T) {
	service := NewExportService(&fakeBracketService{view: completedBracketView()}, &fakeUploader{}, testLogger())

	placements, err := service.Standings(context.Background(), 7)
	require.NoError(t, err)

	want := []Placement{
		{Place: 1, EntrantID: 101, DisplayName: "alpha"},
		{Place: 2, EntrantID: 102, DisplayName: "bravo"},
		{Place: 3, EntrantID: 103, DisplayName: "charlie"},
		{Place: 4, EntrantID: 104, DisplayName: "delta"},
		{Place: 5, EntrantID: 105, DisplayName: "echo"},
		{Place: 5, EntrantID: 106, DisplayName: "foxtrot"},
		{Place: 7, EntrantID: 108, DisplayName: "hotel"},
		{Place: 7, EntrantID: 107, DisplayName: "golf"},
	}
	assert.Equal(t, want, placements)
}

func TestExportServiceStandings_ResetDecidesRunnerUp(t *testing.T) {
	view := completedBracketView()
	// The losers finalist takes the first grand final, forcing a reset that
	// the winners finalist loses.
	view.Matches[len(view.Matches)-1] = completedMatch(16, 101, 102, 1, 3)
	view.Matches = append(view.Matches, completedMatch(17, 102, 101, 3, 2))
	champion := 102
	view.Tournament.ChampionID = &champion

	service := NewExportService(&fakeBracketService{view: view}, &fakeUploader{}, testLogger())

	placements, err := service.Standings(context.Background(), 7)
	require.NoError(t, err)
	require.True(t, len(placements) >= 2)
	assert.Equal(t, Placement{Place: 1, EntrantID: 102, DisplayName: "bravo"}, placements[0])
	assert.Equal(t, Placement{Place: 2, EntrantID: 101, DisplayName: "alpha"}, placements[1])
}

func TestExportServiceStandings_RequiresCompletion(t *testing.T) {
	view := completedBracketView()
	view.Tournament.Status = models.StatusActive
	view.Tournament.ChampionID = nil

	service := NewExportService(&fakeBracketService{view: view}, &fakeUploader{}, testLogger())

	_, err := service.Standings(context.Background(), 7)
	require.ErrorIs(t, err, ErrTournamentNotCompleted)
}

func TestExportServiceExportStandings(t *testing.T) {
	uploader := &fakeUploader{}
	service := NewExportService(&fakeBracketService{view: completedBracketView()}, uploader, testLogger())

	url, err := service.ExportStandings(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/standings/tournament_7.csv", url)
	assert.Equal(t, "standings/tournament_7.csv", uploader.key)
	assert.Equal(t, "text/csv", uploader.contentType)

	want := "place,entrant_id,display_name\n" +
		"1,101,alpha\n" +
		"2,102,bravo\n" +
		"3,103,charlie\n" +
		"4,104,delta\n" +
		"5,105,echo\n" +
		"5,106,foxtrot\n" +
		"7,108,hotel\n" +
		"7,107,golf\n"
	assert.Equal(t, want, string(uploader.body))
}
