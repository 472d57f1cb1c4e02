package menu

import (
	"context"
	"io"
	"net/http"
	"sync"
	"testing"

	"github.com/kotrzina/knue-meals/pkg/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"
)

const sadoPage = `<html><head><meta charset="euc-kr"></head><body>
<div id="contents"><div>
<div class="day">2025년 3월 1일</div>
<div><table>
<tr><td>쌀밥<br>북어국<br>&nbsp;<br>배추김치</td></tr>
<tr><td>잡곡밥<br>된장찌개</td><td>제육볶음<br>깍두기</td></tr>
<tr><td>카레라이스<br>
  계란국</td></tr>
</table></div>
</div></div>
</body></html>`

// no tbody and only two rows
const sadoPageNoDinner = `<html><body>
<div id="contents"><div><div></div><div><table>
<tr><td>토스트</td></tr>
<tr><td>짜장면</td></tr>
</table></div></div></div>
</body></html>`

const staffPage = `<html><body>
<ul class="tabs"><li>월</li><li>화</li></ul>
<div id="tab1">
  <h4 class="title">교직원 식당 ( 2025년 12월 22일 ) 월요일</h4>
  <div class="table-wrap"><table class="tbl_menu">
    <tr><th>아침</th><td>[07:30~08:30]<br>쌀밥<br>북어국</td></tr>
    <tr><th>점심</th><td>(11:30~13:30)<br>잡곡밥<br>제육볶음</td></tr>
    <tr><th>저녁</th><td>17:30~18:30<br>비빔밥</td></tr>
    <tr><th>비고</th><td>원산지: 국내산</td></tr>
  </table></div>
</div>
<div id="tab2">
  <h4 class="title">교직원 식당 ( 2025년 12월 23일 ) 화요일</h4>
  <table class="tbl_menu">
    <tr><th>아침</th><td></td></tr>
    <tr><th>점심</th><td>&nbsp;</td></tr>
    <tr><th>저녁</th><td><br></td></tr>
  </table>
</div>
<div id="tab3">
  <h4 class="title">학생 식당 수요일</h4>
  <table class="tbl_menu"><tr><th>점심</th><td>라면</td></tr></table>
</div>
<div id="tab4">
  <h4>교직원 식당 목요일</h4>
</div>
</body></html>`

type fakeFetcher struct {
	mu      sync.Mutex
	pages   map[string][]byte
	err     error
	fetched []string
	headers []http.Header
}

func (f *fakeFetcher) Fetch(_ context.Context, url string, header http.Header) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fetched = append(f.fetched, url)
	f.headers = append(f.headers, header)
	if f.err != nil {
		return nil, f.err
	}
	return f.pages[url], nil
}

func (f *fakeFetcher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fetched)
}

func encodeEucKR(t *testing.T, s string) []byte {
	t.Helper()

	out, err := korean.EUCKR.NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return out
}

func testCatalog(t *testing.T) *Catalog {
	t.Helper()

	catalog, err := DefaultCatalog()
	require.NoError(t, err)
	return catalog.WithURLs("http://sado.test/menu.jsp", "http://staff.test/menu")
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestService(t *testing.T, f *fakeFetcher) *Service {
	t.Helper()
	return NewService(testCatalog(t), f, prometheus.New(), testLogger())
}
