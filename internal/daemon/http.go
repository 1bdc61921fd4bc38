package daemon

import (
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"

	"github.com/theirongolddev/subcal/internal/charges"
	"github.com/theirongolddev/subcal/internal/dayindex"
	"github.com/theirongolddev/subcal/internal/model"
	"github.com/theirongolddev/subcal/internal/pipeline"
	"github.com/theirongolddev/subcal/internal/schedule"
	"github.com/theirongolddev/subcal/internal/selection"
	"github.com/theirongolddev/subcal/internal/timeline"
)

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.metrics.middleware())

	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	v1 := r.Group("/v1")
	v1.GET("/status", s.handleStatus)
	v1.GET("/subscriptions", s.handleSubscriptions)
	v1.GET("/summary", s.handleSummary)
	v1.GET("/totals", s.handleTotals)
	v1.GET("/totals/selection", s.handleSelection)
	v1.GET("/events", s.handleEvents)
	v1.GET("/stream", s.handleStream)
	return r
}

func badRequest(c *gin.Context, format string, args ...any) {
	c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf(format, args...)})
}

func (s *Service) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "ok\n")
}

func (s *Service) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.snapshotStatus())
}

// SubscriptionRow is one entry of /v1/subscriptions.
type SubscriptionRow struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Currency   string  `json:"currency"`
	Cycle      string  `json:"cycle"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date,omitempty"`
	Color      string  `json:"color,omitempty"`
	Link       string  `json:"link,omitempty"`
	PrevCharge string  `json:"prev_charge,omitempty"`
	NextCharge string  `json:"next_charge,omitempty"`
	Monthly    float64 `json:"monthly_estimate"`
}

func isoOrEmpty(d *dayindex.Day) string {
	if d == nil {
		return ""
	}
	return d.ISO()
}

func (s *Service) handleSubscriptions(c *gin.Context) {
	mode, err := schedule.ParseSortMode(c.Query("sort"))
	if err != nil {
		badRequest(c, "%v", err)
		return
	}
	st, err := s.load(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	rows := schedule.Sort(st.subs, mode, s.today())

	out := make([]SubscriptionRow, 0, len(rows))
	for _, r := range rows {
		monthly := charges.EstimateMonthly(r.Sub)
		if math.IsNaN(monthly) {
			monthly = 0
		}
		out = append(out, SubscriptionRow{
			ID:         r.Sub.ID,
			Name:       r.Sub.Name,
			Price:      r.Sub.Price,
			Currency:   r.Sub.Currency,
			Cycle:      string(r.Sub.Cycle),
			StartDate:  r.Sub.StartDay.ISO(),
			EndDate:    isoOrEmpty(r.Sub.EndDay),
			Color:      r.Sub.Color,
			Link:       r.Sub.Link,
			PrevCharge: isoOrEmpty(r.Prev),
			NextCharge: isoOrEmpty(r.Next),
			Monthly:    monthly,
		})
	}
	c.JSON(http.StatusOK, gin.H{"version": st.version, "sort": mode, "subscriptions": out})
}

func (s *Service) handleSummary(c *gin.Context) {
	st, err := s.load(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	today := s.today()
	c.JSON(http.StatusOK, gin.H{
		"version":  st.version,
		"today":    today.ISO(),
		"summary":  pipeline.Summarize(st.subs, today, s.cfg.Rates),
		"currency": pipeline.CostBreakdown(st.subs, today, s.cfg.Rates),
	})
}

// TotalsBucket is one period of /v1/totals.
type TotalsBucket struct {
	Key    string               `json:"key"`
	Start  string               `json:"start"`
	End    string               `json:"end"`
	Totals model.CurrencyBucket `json:"totals"`
}

func (s *Service) parseDayParam(c *gin.Context, name string, fallback dayindex.Day) (dayindex.Day, bool) {
	text := c.Query(name)
	if text == "" {
		return fallback, true
	}
	d, ok := dayindex.ParseISO(text)
	if !ok {
		badRequest(c, "%s must be a YYYY-MM-DD date, got %q", name, text)
		return 0, false
	}
	return s.cfg.Viewport.Bounds.Clamp(d), true
}

func (s *Service) handleTotals(c *gin.Context) {
	today := s.today()
	year := today.Parts().Year
	start, ok := s.parseDayParam(c, "start", dayindex.FromParts(year, 0, 1))
	if !ok {
		return
	}
	end, ok := s.parseDayParam(c, "end", dayindex.FromParts(year, 11, 31))
	if !ok {
		return
	}
	if end < start {
		badRequest(c, "end %s is before start %s", end, start)
		return
	}
	by := c.DefaultQuery("by", "month")
	if by != "day" && by != "month" && by != "year" {
		badRequest(c, "by must be day, month or year, got %q", by)
		return
	}

	st, err := s.load(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	began := time.Now()
	totals := s.memo.Aggregate(st.version, st.subs, start, end)
	s.metrics.observeAggregation("totals", began)

	buckets := Buckets(totals, by)
	total := model.CurrencyBucket{}
	for _, b := range totals.Years {
		total.Merge(b)
	}

	c.JSON(http.StatusOK, gin.H{
		"version": st.version,
		"start":   start.ISO(),
		"end":     end.ISO(),
		"by":      by,
		"skipped": totals.Skipped,
		"total":   total,
		"buckets": buckets,
	})
}

// Buckets lists the totals of every day, month or year between the range
// bounds, clipped to the range. Periods with no charges carry an empty map.
func Buckets(t *charges.Totals, by string) []TotalsBucket {
	var out []TotalsBucket
	clip := func(lo, hi dayindex.Day) (dayindex.Day, dayindex.Day) {
		return max(lo, t.Start), min(hi, t.End)
	}
	switch by {
	case "day":
		for d := t.Start; d <= t.End; d++ {
			out = append(out, TotalsBucket{Key: d.ISO(), Start: d.ISO(), End: d.ISO(), Totals: orEmpty(t.Day(d))})
		}
	case "year":
		for y := t.Start.Parts().Year; y <= t.End.Parts().Year; y++ {
			lo, hi := clip(dayindex.FromParts(y, 0, 1), dayindex.FromParts(y, 11, 31))
			out = append(out, TotalsBucket{Key: strconv.Itoa(y), Start: lo.ISO(), End: hi.ISO(), Totals: orEmpty(t.Year(y))})
		}
	default:
		first := dayindex.MonthKey(t.Start.Parts())
		last := dayindex.MonthKey(t.End.Parts())
		for key := first; key <= last; key++ {
			y, m := dayindex.MonthKeyParts(key)
			ms := dayindex.FromParts(y, m, 1)
			lo, hi := clip(ms, dayindex.MonthEnd(ms))
			out = append(out, TotalsBucket{
				Key:    fmt.Sprintf("%04d-%02d", y, m+1),
				Start:  lo.ISO(),
				End:    hi.ISO(),
				Totals: orEmpty(t.Month(y, m)),
			})
		}
	}
	return out
}

func orEmpty(b model.CurrencyBucket) model.CurrencyBucket {
	if b == nil {
		return model.CurrencyBucket{}
	}
	return b
}

// SelectionResponse is served at /v1/totals/selection.
type SelectionResponse struct {
	Version   int64                `json:"version"`
	DayWidth  float64              `json:"day_width"`
	Kind      string               `json:"kind"`
	Label     string               `json:"label,omitempty"`
	Start     string               `json:"start"`
	Spans     []SpanJSON           `json:"spans"`
	Total     model.CurrencyBucket `json:"total"`
	Requested []string             `json:"requested"`
}

// SpanJSON is a selected span as served over HTTP.
type SpanJSON struct {
	Kind  string `json:"kind"`
	Label string `json:"label"`
	Start string `json:"start"`
	End   string `json:"end"`
}

func (s *Service) handleSelection(c *gin.Context) {
	spans := c.QueryArray("span")
	if len(spans) == 0 {
		badRequest(c, "at least one span=kind:date parameter is required")
		return
	}
	width := s.cfg.InitialWidth
	if text := c.Query("width"); text != "" {
		w, err := strconv.ParseFloat(text, 64)
		if err != nil || !(w > 0) {
			badRequest(c, "width must be a positive number, got %q", text)
			return
		}
		width = w
	}

	st, err := s.load(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	eng := timeline.New(timeline.Options{
		Viewport:     s.cfg.Viewport,
		InitialWidth: width,
		Today:        s.today(),
		Memo:         s.memo,
		Logger:       s.log,
	})
	eng.SetSubscriptions(st.subs, st.version)
	for _, raw := range spans {
		kind, day, err := selection.ParseSpec(raw)
		if err != nil {
			badRequest(c, "%v", err)
			return
		}
		eng.Toggle(kind, day)
	}

	began := time.Now()
	info, ok := eng.SelectionTotals()
	s.metrics.observeAggregation("selection", began)

	resp := SelectionResponse{
		Version:   st.version,
		DayWidth:  eng.Viewport().DayWidth,
		Requested: spans,
		Spans:     []SpanJSON{},
		Total:     model.CurrencyBucket{},
	}
	if ok {
		resp.Kind = info.Kind
		resp.Label = info.Label
		resp.Start = info.Start.ISO()
		resp.Total = info.Total
		for _, sp := range info.Spans {
			resp.Spans = append(resp.Spans, SpanJSON{Kind: sp.Kind.String(), Label: sp.Label, Start: sp.Start.ISO(), End: sp.End.ISO()})
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Service) handleEvents(c *gin.Context) {
	var after int64
	if text := c.Query("after"); text != "" {
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			badRequest(c, "after must be an event id, got %q", text)
			return
		}
		after = n
	}
	c.JSON(http.StatusOK, s.eventsSince(after))
}

func (s *Service) handleStream(c *gin.Context) {
	c.Header("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	renderEvent(c, Event{
		Type:      EventSnapshot,
		Timestamp: s.cfg.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	})
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev := <-ch:
			renderEvent(c, ev)
			return true
		}
	})
}

func renderEvent(c *gin.Context, ev Event) {
	frame := sse.Event{Event: ev.Type, Data: ev}
	if ev.ID > 0 {
		frame.Id = strconv.FormatInt(ev.ID, 10)
	}
	c.Render(-1, frame)
}
