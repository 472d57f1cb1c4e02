package menu

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/kotrzina/knue-meals/pkg/extract"
	"github.com/kotrzina/knue-meals/pkg/fetch"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sadoURL = "http://sado.test/menu.jsp?date=1&month=3&year=2025"

func TestDateMenu(t *testing.T) {
	f := &fakeFetcher{pages: map[string][]byte{sadoURL: encodeEucKR(t, sadoPage)}}
	svc := newTestService(t, f)

	sched, err := svc.DateMenu(context.Background(), DateRequest{Year: 2025, Month: 3, Day: 1})
	require.NoError(t, err)

	assert.Equal(t, []string{sadoURL}, f.fetched)
	assert.Equal(t, "Mozilla/5.0", f.headers[0].Get("User-Agent"))
	assert.Equal(t, "ko-KR,ko;q=0.9", f.headers[0].Get("Accept-Language"))

	require.NotNil(t, sched.DateString())
	assert.Equal(t, "2025-03-01", *sched.DateString())
	assert.Equal(t, "knue-sado", sched.Source)
	assert.Equal(t, SadoMeals, sched.Slots)
	assert.Equal(t, map[string][]string{
		"조식": {"쌀밥", "북어국", "배추김치"},
		"중식": {"잡곡밥", "된장찌개", "제육볶음", "깍두기"},
		"석식": {"카레라이스", "계란국"},
	}, sched.Meals)
	assert.Empty(t, sched.Note)

	assert.Equal(t, 1.0, testutil.ToFloat64(svc.monitor.Requests.WithLabelValues("knue-sado", "ok")))
}

func TestDateMenuMissingRowIsEmpty(t *testing.T) {
	f := &fakeFetcher{pages: map[string][]byte{sadoURL: []byte(sadoPageNoDinner)}}
	svc := newTestService(t, f)

	sched, err := svc.DateMenu(context.Background(), DateRequest{Year: 2025, Month: 3, Day: 1, Meal: "석식"})
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"조식": {"토스트"},
		"중식": {"짜장면"},
		"석식": {},
	}, sched.Meals)
}

func TestDateMenuInvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		req     DateRequest
		message string
	}{
		{"month out of range", DateRequest{Year: 2025, Month: 13, Day: 1}, "m must be at most 12"},
		{"year too small", DateRequest{Year: 1999, Month: 1, Day: 1}, "y must be at least 2000"},
		{"day zero", DateRequest{Year: 2025, Month: 1, Day: 0}, "d must be at least 1"},
		{"impossible date", DateRequest{Year: 2025, Month: 2, Day: 30}, "invalid date: 2025-02-30"},
		{"unknown meal", DateRequest{Year: 2025, Month: 3, Day: 1, Meal: "간식"}, "meal must be one of: 조식, 중식, 석식"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeFetcher{}
			svc := newTestService(t, f)

			_, err := svc.DateMenu(context.Background(), tt.req)
			require.Error(t, err)
			assert.Equal(t, KindInvalidInput, KindOf(err))
			assert.Contains(t, err.Error(), tt.message)
			assert.Equal(t, 0, f.calls(), "no fetch before validation passes")
		})
	}
}

func TestDateMenuUpstreamFailure(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		timeout bool
		status  int
	}{
		{"timeout", &fetch.Error{URL: sadoURL, Timeout: true, Err: errors.New("deadline")}, true, 0},
		{"bad status", &fetch.Error{URL: sadoURL, StatusCode: 503, Status: "503 Service Unavailable"}, false, 503},
		{"refused", &fetch.Error{URL: sadoURL, Err: errors.New("connection refused")}, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, &fakeFetcher{err: tt.err})

			_, err := svc.DateMenu(context.Background(), DateRequest{Year: 2025, Month: 3, Day: 1})
			require.Error(t, err)
			assert.Equal(t, KindUpstream, KindOf(err))
			assert.Equal(t, tt.timeout, IsTimeout(err))
			assert.Equal(t, tt.status, UpstreamStatus(err))
		})
	}
}

func TestWeekdayMenu(t *testing.T) {
	f := &fakeFetcher{pages: map[string][]byte{"http://staff.test/menu": []byte(staffPage)}}
	svc := newTestService(t, f)

	sched, err := svc.WeekdayMenu(context.Background(), WeekdayRequest{Day: "mon"})
	require.NoError(t, err)

	assert.Equal(t, "knue-staff", sched.Source)
	assert.Equal(t, "교직원 식당", sched.Label)
	require.NotNil(t, sched.DateString())
	assert.Equal(t, "2025-12-22", *sched.DateString())
	assert.Equal(t, map[string][]string{
		"아침": {"쌀밥", "북어국"},
		"점심": {"잡곡밥", "제육볶음"},
		"저녁": {"비빔밥"},
	}, sched.Meals)
	assert.Empty(t, sched.Note)
}

func TestWeekdayMenuAllEmptyHasNote(t *testing.T) {
	f := &fakeFetcher{pages: map[string][]byte{"http://staff.test/menu": []byte(staffPage)}}
	svc := newTestService(t, f)

	sched, err := svc.WeekdayMenu(context.Background(), WeekdayRequest{Day: "tue"})
	require.NoError(t, err)

	assert.True(t, sched.Empty())
	assert.Equal(t, map[string][]string{"아침": {}, "점심": {}, "저녁": {}}, sched.Meals)
	assert.NotEmpty(t, sched.Note)
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.monitor.EmptySchedules.WithLabelValues("knue-staff")))
}

func TestWeekdayMenuStructuralFailures(t *testing.T) {
	tests := []struct {
		day string
		err error
	}{
		{"wed", extract.ErrSectionNotFound}, // heading for another cafeteria
		{"thu", extract.ErrTableNotFound},
		{"fri", extract.ErrSectionNotFound}, // no block at all
	}

	for _, tt := range tests {
		t.Run(tt.day, func(t *testing.T) {
			f := &fakeFetcher{pages: map[string][]byte{"http://staff.test/menu": []byte(staffPage)}}
			svc := newTestService(t, f)

			_, err := svc.WeekdayMenu(context.Background(), WeekdayRequest{Day: tt.day})
			require.Error(t, err)
			assert.Equal(t, KindExtraction, KindOf(err))
			assert.True(t, errors.Is(err, tt.err), err.Error())
		})
	}
}

func TestWeekdayMenuInvalidDay(t *testing.T) {
	for _, day := range []string{"xyz", "", "MON", "monday"} {
		t.Run(day, func(t *testing.T) {
			f := &fakeFetcher{}
			svc := newTestService(t, f)

			_, err := svc.WeekdayMenu(context.Background(), WeekdayRequest{Day: day})
			require.Error(t, err)
			assert.Equal(t, KindInvalidInput, KindOf(err))
			assert.Equal(t, 0, f.calls())
		})
	}

	_, err := newTestService(t, &fakeFetcher{}).WeekdayMenu(context.Background(), WeekdayRequest{Day: "xyz"})
	assert.EqualError(t, err, "day must be one of: mon, tue, wed, thu, fri, sat, sun")
}

func TestWeekdayMenuTimeout(t *testing.T) {
	svc := newTestService(t, &fakeFetcher{err: &fetch.Error{Timeout: true, Err: errors.New("slow")}})

	_, err := svc.WeekdayMenu(context.Background(), WeekdayRequest{Day: "mon"})
	require.Error(t, err)
	assert.Equal(t, KindUpstream, KindOf(err))
	assert.True(t, IsTimeout(err))
}

func TestServiceConcurrentCalls(t *testing.T) {
	f := &fakeFetcher{pages: map[string][]byte{
		"http://staff.test/menu": []byte(staffPage),
		sadoURL:                  encodeEucKR(t, sadoPage),
	}}
	svc := newTestService(t, f)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			sched, err := svc.WeekdayMenu(context.Background(), WeekdayRequest{Day: "mon"})
			if err == nil && len(sched.Meals["점심"]) != 2 {
				err = fmt.Errorf("unexpected lunch %v", sched.Meals["점심"])
			}
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := svc.DateMenu(context.Background(), DateRequest{Year: 2025, Month: 3, Day: 1})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 20, f.calls())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "invalid_input", KindInvalidInput.String())
	assert.Equal(t, "upstream", KindUpstream.String())
	assert.Equal(t, "extraction", KindExtraction.String())
	assert.Equal(t, "unknown", Kind(0).String())
	assert.Equal(t, KindExtraction, KindOf(errors.New("boom")))
}
