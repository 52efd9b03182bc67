package contact

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCompany(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{raw: "  Acme Co  ", want: "Acme Co", wantOK: true},
		{raw: "", wantOK: false},
		{raw: "   ", wantOK: false},
		{raw: "nan", wantOK: false},
		{raw: "NaN", want: "NaN", wantOK: true},
		{raw: " NAN ", want: "NAN", wantOK: true},
		{raw: " nan ", wantOK: false},
		{raw: "บริษัท ตัวอย่าง จำกัด", want: "บริษัท ตัวอย่าง จำกัด", wantOK: true},
	}
	for _, tt := range tests {
		got, ok := NormalizeCompany(tt.raw)
		assert.Equal(t, tt.wantOK, ok, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestOutcomeConstructors(t *testing.T) {
	t.Parallel()

	require.Equal(t, OutcomeEmpty, Found(Fields{}).Status)
	found := Found(Fields{Phone: "021234567"})
	require.Equal(t, OutcomeFound, found.Status)
	require.Equal(t, "021234567", found.Fields.Phone)

	failed := Failed(errors.New("boom"))
	require.Equal(t, OutcomeFailed, failed.Status)
	require.EqualError(t, failed.Err, "boom")
}

func TestNotFoundRecordHasNoFields(t *testing.T) {
	t.Parallel()

	rec := NotFound()
	require.Equal(t, SourceNotFound, rec.Source)
	require.False(t, rec.Any())
	require.False(t, NoData().Any())
}

func TestJobStateCloneIsDeep(t *testing.T) {
	t.Parallel()

	now := time.Unix(100, 0)
	state := JobState{
		ID:      "job-1",
		Results: &Summary{Filename: "a.xlsx"},
		Started: &now,
	}
	cp := state.Clone()
	cp.Results.Filename = "b.xlsx"
	*cp.Started = time.Unix(200, 0)

	require.Equal(t, "a.xlsx", state.Results.Filename)
	require.Equal(t, now, *state.Started)
}

func TestResultSetSummarizeCountsFieldsIndependently(t *testing.T) {
	t.Parallel()

	rs := ResultSet{
		{Company: "A", Record: Record{Fields: Fields{Email: "a@a.com", Phone: "021234567"}, Source: "Bing"}},
		{Company: "", Record: NoData()},
		{Company: "B", Record: Record{Fields: Fields{Website: "https://b.co.th"}, Source: "Direct Website"}},
		{Company: "C", Record: NotFound()},
	}
	summary := rs.Summarize("out.xlsx")
	require.Equal(t, Summary{
		Filename:       "out.xlsx",
		TotalCompanies: 4,
		FoundEmails:    1,
		FoundPhones:    1,
		FoundWebsites:  1,
	}, summary)
}

func TestFetchResponseOK(t *testing.T) {
	t.Parallel()

	assert.True(t, FetchResponse{StatusCode: 200}.OK())
	assert.True(t, FetchResponse{StatusCode: 204}.OK())
	assert.False(t, FetchResponse{StatusCode: 302}.OK())
	assert.False(t, FetchResponse{StatusCode: 503}.OK())
}
