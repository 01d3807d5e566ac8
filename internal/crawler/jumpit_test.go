package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/amishk599/jobscout/internal/model"
)

func jumpitPage(totalCount, start, n int, empty bool) string {
	items := make([]string, 0, n)
	for i := 0; i < n; i++ {
		id := start + i
		items = append(items, fmt.Sprintf(
			`{"id":%d,"jobCategory":"서버/백엔드 개발자","title":"백엔드 %d","companyName":"점핏컴퍼니",`+
				`"newcomer":false,"minCareer":2,"maxCareer":5,"locations":["경기 성남시","서울 강남구"],"alwaysOpen":false}`, id, id))
	}
	return fmt.Sprintf(`{"message":"success","status":200,"code":"","result":{"totalCount":%d,"page":1,"positions":[%s],"emptyPosition":%t}}`,
		totalCount, strings.Join(items, ","), empty)
}

func TestJumpitFetchList_StopsAtTotalCount(t *testing.T) {
	var pages []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/positions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		page := r.URL.Query().Get("page")
		pages = append(pages, page)
		switch page {
		case "1":
			w.Write([]byte(jumpitPage(36, 1, 16, false)))
		case "2":
			w.Write([]byte(jumpitPage(36, 17, 16, false)))
		case "3":
			w.Write([]byte(jumpitPage(36, 33, 4, false)))
		default:
			t.Errorf("page %s should not be requested", page)
			w.Write([]byte(jumpitPage(36, 0, 0, true)))
		}
	}))
	defer srv.Close()

	c := newTestRegistry(Endpoints{Jumpit: srv.URL}).Jumpit()
	jobs, err := c.FetchList(context.Background(), model.CrawlOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 36 {
		t.Fatalf("expected 36 positions, got %d", len(jobs))
	}
	if !reflect.DeepEqual(pages, []string{"1", "2", "3"}) {
		t.Errorf("pages requested = %v", pages)
	}
	if jobs[0].CompanyName != "점핏컴퍼니" || jobs[0].MinCareer != 2 {
		t.Errorf("unexpected first position: %+v", jobs[0])
	}
}

func TestJumpitFetchList_ShortPageDoesNotStop(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		switch r.URL.Query().Get("page") {
		case "1":
			w.Write([]byte(jumpitPage(100, 1, 5, false)))
		case "2":
			w.Write([]byte(jumpitPage(100, 6, 5, false)))
		default:
			w.Write([]byte(jumpitPage(100, 0, 0, true)))
		}
	}))
	defer srv.Close()

	jobs, err := newTestRegistry(Endpoints{Jumpit: srv.URL}).Jumpit().FetchList(context.Background(), model.CrawlOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 10 || calls != 3 {
		t.Errorf("got %d positions over %d calls, want 10 over 3", len(jobs), calls)
	}
}

func TestJumpitFetchList_MissingTotalCountFollowsEmptySignal(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		switch r.URL.Query().Get("page") {
		case "1":
			w.Write([]byte(jumpitPage(0, 1, 16, false)))
		case "2":
			w.Write([]byte(jumpitPage(0, 17, 16, false)))
		default:
			w.Write([]byte(jumpitPage(0, 0, 0, true)))
		}
	}))
	defer srv.Close()

	c := newTestRegistry(Endpoints{Jumpit: srv.URL}).Jumpit()
	jobs, err := c.FetchList(context.Background(), model.CrawlOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 32 || calls != 3 {
		t.Errorf("got %d positions over %d calls, want 32 over 3", len(jobs), calls)
	}
}

func TestJumpitFetchList_Query(t *testing.T) {
	var query map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Write([]byte(jumpitPage(0, 0, 0, true)))
	}))
	defer srv.Close()

	opts := model.CrawlOptions{Keywords: []string{"kotlin", "spring"}, Locations: []string{"서초구"}}
	if _, err := newTestRegistry(Endpoints{Jumpit: srv.URL}).Jumpit().FetchList(context.Background(), opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checks := map[string][]string{
		"jobCategory": {"1", "2", "3"},
		"locationTag": {"101050"},
		"keyword":     {"kotlin spring"},
		"sort":        {"rsp_rate"},
		"page":        {"1"},
	}
	for key, want := range checks {
		if got := query[key]; !reflect.DeepEqual(got, want) {
			t.Errorf("%s = %v, want %v", key, got, want)
		}
	}
}

func TestJumpitFetchDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/position/321" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"result":{
			"serviceInfo":"채용 플랫폼",
			"responsibility":"- 검색 API 개발<br>- 성능 개선",
			"qualifications":"Java 또는 Go",
			"preferredRequirements":"",
			"welfares":"점심 제공"
		}}`))
	}))
	defer srv.Close()

	c := newTestRegistry(Endpoints{Jumpit: srv.URL}).Jumpit()
	ctx := context.Background()

	got := c.FetchDetail(ctx, "https://jumpit.saramin.co.kr/position/321")
	want := "## 서비스 소개\n채용 플랫폼\n\n## 주요 업무\n- 검색 API 개발\n- 성능 개선\n\n## 자격 요건\nJava 또는 Go\n\n## 복지 및 혜택\n점심 제공"
	if got != want {
		t.Errorf("detail =\n%s\nwant\n%s", got, want)
	}

	if got := c.FetchDetail(ctx, "https://jumpit.saramin.co.kr/position/1"); got != DetailFallback {
		t.Errorf("404: got %q, want fallback", got)
	}
	if got := c.FetchDetail(ctx, "https://jumpit.saramin.co.kr/company/1"); got != DetailFallback {
		t.Errorf("bad url: got %q, want fallback", got)
	}
}
