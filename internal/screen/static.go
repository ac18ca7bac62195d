package screen

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/tablescope/internal/catalog"
	"github.com/KaramelBytes/tablescope/internal/chart"
	"github.com/KaramelBytes/tablescope/internal/tabular"
)

// GreetingInput is the greeting form. Messages appear only once submitted.
type GreetingInput struct {
	Name      string
	Food      string
	Submitted bool
}

// Greeting is the introductory demo screen.
func (e *Env) Greeting(_ context.Context, in GreetingInput) *View {
	v := newView("웹서비스제작")
	foods := e.Catalog.Foods()
	v.Choices["food"] = foods
	v.Selected["name"] = in.Name
	v.Selected["food"] = pick(in.Food, foods)
	if !in.Submitted {
		return v
	}
	v.add(LevelInfo, "%s님 안녕하세요", in.Name)
	v.add(LevelWarning, "반가워요")
	v.add(LevelError, "천만에요")
	v.add(LevelSuccess, "🎈🎈🎈")
	return v
}

// Careers lists the two suggested careers for an MBTI type. An empty type
// selects the first one, as the form does.
func (e *Env) Careers(_ context.Context, mbti string) *View {
	v := newView("🌟 MBTI 진로 추천기")
	v.Notes = append(v.Notes, "안녕! 😀 아래에서 너의 MBTI를 고르면 어울릴 만한 진로를 추천해줄게!")
	types := catalog.MBTITypes()
	v.Choices["type"] = types
	t := mbti
	if t == "" {
		t = types[0]
	}
	key, ok := catalog.Normalize(t)
	v.Selected["type"] = key
	jobs, found := e.Catalog.Careers(key)
	if !ok || !found {
		v.add(LevelWarning, "알 수 없는 MBTI 유형입니다: %s", mbti)
		return v
	}
	sec := Section{Heading: fmt.Sprintf("🌈 %s 유형에게 어울리는 진로 추천!", key)}
	for i, j := range jobs {
		sec.Lines = append(sec.Lines, Line{Title: fmt.Sprintf("%d) %s", i+1, j)})
	}
	v.Sections = append(v.Sections, sec)
	v.Notes = append(v.Notes, "화이팅! 너의 길을 응원할게 🥰")
	return v
}

// MediaInput is the book/movie form.
type MediaInput struct {
	Type      string
	Submitted bool
}

// Media shows book and movie recommendations. Types without an entry get a
// "not ready yet" notice.
func (e *Env) Media(_ context.Context, in MediaInput) *View {
	v := newView("MBTI별 책·영화 추천기 🎯")
	types := catalog.MBTITypes()
	v.Choices["type"] = types
	key, _ := catalog.Normalize(in.Type)
	key = pick(key, types)
	v.Selected["type"] = key
	v.Notes = append(v.Notes, "※ 추천 도서는 대한민국에서 판매되는 번역본/원서로 구할 수 있는 작품들을 중심으로 선정했습니다.")
	if !in.Submitted {
		return v
	}
	rec, ok := e.Catalog.Media(key)
	if !ok {
		v.add(LevelInfo, "아직 해당 MBTI에 대한 추천이 준비되지 않았어요. 😅")
		return v
	}
	v.Sections = append(v.Sections,
		itemSection("📚 책 추천 — "+key, rec.Books),
		itemSection("🎬 영화 추천 — "+key, rec.Movies),
	)
	v.add(LevelSuccess, "즐거운 감상 되세요! 필요하면 추천을 더 바꿔줄게요. 😄")
	return v
}

func itemSection(heading string, items []catalog.Item) Section {
	s := Section{Heading: heading}
	for i, it := range items {
		s.Lines = append(s.Lines, Line{Title: fmt.Sprintf("%d. %s", i+1, it.Title), Meta: it.By, Text: it.Reason})
	}
	return s
}

// Spots lists the tourist spots as a table and a longitude/latitude scatter.
func (e *Env) Spots(_ context.Context) *View {
	v := newView("🇰🇷 외국인이 좋아하는 한국 관광지 Top 10")
	v.Subtitle = "(데이터 출처: VisitKorea, TripAdvisor, Lonely Planet 등)"
	spots := e.Catalog.Spots
	if len(spots) == 0 {
		return v.fail(&EmptyResultError{Hint: "표시할 관광지가 없습니다."})
	}
	t := tabular.New([]string{"이름", "위도", "경도", "설명"})
	points := make([]chart.Point, len(spots))
	for i, s := range spots {
		t.Append(tabular.Row{
			"이름": s.Name,
			"위도": strconv.FormatFloat(s.Lat, 'f', 4, 64),
			"경도": strconv.FormatFloat(s.Lon, 'f', 4, 64),
			"설명": s.Desc,
		})
		points[i] = chart.Point{Name: s.Name, X: s.Lon, Y: s.Lat}
	}
	sc, err := chart.Scatter(chart.ScatterSpec{Title: "관광지 위치", XName: "경도", YName: "위도", Points: points, Height: "640px"})
	if err != nil {
		return v.fail(err)
	}
	html, err := chart.Render(sc)
	if err != nil {
		return v.fail(err)
	}
	v.Charts = append(v.Charts, Panel{Heading: "관광지 위치 (경도/위도)", HTML: html})
	v.Table = t
	v.TableTitle = "관광지 목록"
	v.Notes = append(v.Notes, "예시용 목록이며 필요하면 직접 순위·위치·설명을 조정하세요.")
	return v
}

// pick returns want when it is one of options, else the first option.
func pick(want string, options []string) string {
	for _, o := range options {
		if o == want {
			return o
		}
	}
	if len(options) == 0 {
		return want
	}
	return options[0]
}

// pickFold is pick with case-insensitive matching.
func pickFold(want string, options []string) string {
	w := strings.TrimSpace(want)
	for _, o := range options {
		if strings.EqualFold(o, w) {
			return o
		}
	}
	return pick(w, options)
}
