// Package report aggregates journal rows into class-level views:
// day-by-day emotion counts, a weekly digest with an ASCII chart, and
// coaching suggestions for the teacher. Views carry Japanese label keys
// so they serialize the way the dashboard consumes them.
package report

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"kokorolog/internal/emotion"
)

// DayCount is one local-calendar day of class activity.
type DayCount struct {
	Date   string             `json:"date"`
	Counts map[string]int     `json:"counts"`
	Ratios map[string]float64 `json:"ratios"`
	Total  int                `json:"total"`
}

// DailyCompact is the one-line-per-day form of DayCount.
type DailyCompact struct {
	Date  string `json:"date"`
	Total int    `json:"total"`
	Top   string `json:"top"`
}

// KPI is the headline numbers of a reporting window.
type KPI struct {
	Total  int    `json:"total"`
	Top    string `json:"top"`
	TopPct int    `json:"top_pct"`
}

// Coach is the teacher-facing risk assessment and suggestions.
type Coach struct {
	RiskLevel   string   `json:"risk_level"`
	RiskColor   string   `json:"risk_color"`
	RiskLabel   string   `json:"risk_label"`
	Suggestions []string `json:"suggestions"`
}

// WeekView is the human-oriented digest of a reporting window.
type WeekView struct {
	Headline     string         `json:"headline"`
	TextShort    string         `json:"text_short"`
	KPI          KPI            `json:"kpi"`
	Highlights   []string       `json:"highlights"`
	DailyCompact []DailyCompact `json:"daily_compact"`
	ASCIIRows    []string       `json:"ascii_rows"`
	Text         string         `json:"text"`
	Coach        Coach          `json:"coach"`
}

const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// pct returns n/d as a whole percentage, 0 when d is zero.
func pct(n, d int) int {
	if d == 0 {
		return 0
	}
	return int(math.Round(float64(n) * 100 / float64(d)))
}

func sumCounts(counts map[string]int) int {
	total := 0
	for _, l := range emotion.Labels() {
		total += counts[l.String()]
	}
	return total
}

// topKey returns the most frequent emotion name; ties resolve to the
// earliest label in canonical order, and an empty window is Neutral.
func topKey(counts map[string]int) string {
	best, bestCnt := emotion.Neutral.String(), -1
	for _, l := range emotion.Labels() {
		if c := counts[l.String()]; c > bestCnt {
			best, bestCnt = l.String(), c
		}
	}
	if sumCounts(counts) == 0 {
		return emotion.Neutral.String()
	}
	return best
}

// peakDay returns the busiest date and its post count. The earliest day
// wins ties, so a window with no posts still names its first day.
func peakDay(daily []DayCount) (string, int) {
	day, cnt := "", -1
	for _, d := range daily {
		if d.Total > cnt {
			day, cnt = d.Date, d.Total
		}
	}
	return day, cnt
}

// halfShift compares the first half of the window against the second and
// reports non-neutral labels that moved, as "楽しい↑" / "悲しい↓" markers.
func halfShift(daily []DayCount) []string {
	mid := len(daily) / 2
	if mid == 0 {
		mid = 1
	}
	first := map[string]int{}
	second := map[string]int{}
	for i, d := range daily {
		box := first
		if i >= mid {
			box = second
		}
		for k, v := range d.Counts {
			box[k] += v
		}
	}
	var shift []string
	for _, l := range emotion.Labels() {
		if l == emotion.Neutral {
			continue
		}
		k := l.String()
		switch {
		case first[k] < second[k]:
			shift = append(shift, k+"↑")
		case first[k] > second[k]:
			shift = append(shift, k+"↓")
		}
	}
	return shift
}

// padLabel pads to a rune width; the emotion names are 2-4 runes wide.
func padLabel(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// asciiRows renders the per-emotion totals as a fixed-width bar chart,
// one row per label, bars scaled to the busiest label.
func asciiRows(totals map[string]int) []string {
	totalPosts := sumCounts(totals)
	if totalPosts == 0 {
		return []string{"(データなし)"}
	}
	maxCnt := 0
	for _, l := range emotion.Labels() {
		if c := totals[l.String()]; c > maxCnt {
			maxCnt = c
		}
	}
	if maxCnt == 0 {
		maxCnt = 1
	}
	rows := make([]string, 0, len(emotion.Labels()))
	for _, l := range emotion.Labels() {
		k := l.String()
		cnt := totals[k]
		barLen := int(math.Round(float64(cnt) * 10 / float64(maxCnt)))
		rows = append(rows, fmt.Sprintf("%s | %3d件 | %3d%% | %s",
			padLabel(k, 4), cnt, pct(cnt, totalPosts), strings.Repeat("█", barLen)))
	}
	return rows
}

// coachAdvice classifies the window's risk and picks suggestions for
// the teacher. Anxious+Tired volume drives the high tier; a negative
// majority drives medium; everything else is low.
func coachAdvice(totals map[string]int, shift []string) Coach {
	total := sumCounts(totals)
	pos := totals[emotion.Fun.String()]
	neg := totals[emotion.Anxious.String()] + totals[emotion.Tired.String()] +
		totals[emotion.Sad.String()] + totals[emotion.Angry.String()]
	distress := totals[emotion.Anxious.String()] + totals[emotion.Tired.String()]

	var suggestions []string
	risk := RiskLow

	switch {
	case total > 0 && distress >= maxInt(5, roundPct(total, 0.35)):
		risk = RiskHigh
		suggestions = append(suggestions, "不安・しんどいが多め。短いアンケート or 休み時間の個別声かけを1～2名に。")
	case total > 0 && neg > pos:
		risk = RiskMedium
		suggestions = append(suggestions, "ネガ成分がやや優勢。ホームルームで『今週の良かったこと』を1人1つ共有。")
	}

	if pos >= maxInt(5, roundPct(total, 0.5)) {
		suggestions = append(suggestions, "ポジティブ傾向。成功体験の共有タイムを5分入れて雰囲気を底上げ。")
	}

	if containsShift(shift, emotion.Anxious.String()+"↑") {
		suggestions = append(suggestions, "後半に不安が増加。小テスト/行事前後の説明と見通し提示を。")
	}
	if containsShift(shift, emotion.Angry.String()+"↑") {
		suggestions = append(suggestions, "後半に怒りが増加。ルール確認は“理由説明＋代替案”で落ち着かせる。")
	}

	if len(suggestions) == 0 {
		suggestions = append(suggestions, "感情は安定傾向。週明けに先週の良かった点を3つ振り返ると◎。")
	}

	color, label := riskBadge(risk)
	return Coach{RiskLevel: risk, RiskColor: color, RiskLabel: label, Suggestions: suggestions}
}

func riskBadge(risk string) (color, label string) {
	switch risk {
	case RiskHigh:
		return "#FF6B6B", "要対応（赤）"
	case RiskMedium:
		return "#FFD700", "注意（黄）"
	default:
		return "#4CAF50", "安定（緑）"
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func roundPct(total int, frac float64) int {
	return int(math.Round(float64(total) * frac))
}

func containsShift(shift []string, marker string) bool {
	for _, s := range shift {
		if s == marker {
			return true
		}
	}
	return false
}

// BuildWeekView assembles the digest from pre-bucketed daily counts.
func BuildWeekView(days int, classID string, totals map[string]int, daily []DayCount) WeekView {
	totalPosts := sumCounts(totals)
	top := topKey(totals)
	topPct := pct(totals[top], totalPosts)
	peak, peakCnt := peakDay(daily)
	shift := halfShift(daily)

	compact := make([]DailyCompact, 0, len(daily))
	for _, d := range daily {
		compact = append(compact, DailyCompact{Date: d.Date, Total: d.Total, Top: topKey(d.Counts)})
	}

	prefix := ""
	if classID != "" {
		prefix = classID + " / "
	}
	headline := fmt.Sprintf("%s%d日: 投稿%d件・最多「%s」%d%%", prefix, days, totalPosts, top, topPct)

	who := classID
	if who == "" {
		who = "全体"
	}
	textShort := fmt.Sprintf("%s: %sが最多 (%d%%) / 合計%d件", who, top, topPct, totalPosts)

	var highlights []string
	if peak != "" {
		highlights = append(highlights, fmt.Sprintf("投稿最多: %s（%d件）", peak, peakCnt))
	}
	if len(shift) > 0 {
		highlights = append(highlights, "前半→後半: "+strings.Join(shift, "・"))
	}

	text := fmt.Sprintf("直近%d日、投稿%d件。最多は「%s」（%d%%）。", days, totalPosts, top, topPct)
	if peak != "" {
		text += fmt.Sprintf(" 最多日は %s。", peak)
	}
	if len(shift) > 0 {
		text += fmt.Sprintf(" 傾向: %s。", strings.Join(shift, "・"))
	}

	return WeekView{
		Headline:     headline,
		TextShort:    textShort,
		KPI:          KPI{Total: totalPosts, Top: top, TopPct: topPct},
		Highlights:   highlights,
		DailyCompact: compact,
		ASCIIRows:    asciiRows(totals),
		Text:         text,
		Coach:        coachAdvice(totals, shift),
	}
}
