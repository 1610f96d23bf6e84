package weekimage

import (
	"bytes"
	"fmt"
	"image/color"
	"sort"
	"time"

	"github.com/Freeeeeet/signbridge/internal/controller/formatting"
	"github.com/Freeeeeet/signbridge/internal/model"
	"github.com/Freeeeeet/signbridge/internal/timerange"
	"github.com/fogleman/gg"
)

// Kind вид блока на картинке
type Kind int

const (
	KindFree    Kind = iota // Рабочее время переводчика
	KindPending             // Запрос ожидает ответа
	KindBooked              // Подтверждённая встреча
)

// Block прямоугольник на сетке недели
type Block struct {
	Start time.Time
	End   time.Time
	Kind  Kind
	Label string
}

// Константы размеров и отступов
const (
	ImageWidth       = 1400
	ImageHeight      = 900
	headerHeight     = 100
	leftLabelsWidth  = 80
	legendWidth      = 150
	dayPaddingX      = 8
	minBlockHeight   = 8.0
	blockRadius      = 6.0
	shadowOffset     = 3.0
	daysInWeek       = 7
	hourPaddingTop   = 1
	hourPaddingBot   = 1
	defaultMinHour   = 8
	defaultMaxHour   = 18
	busyInsetPadding = 14.0
)

// Константы шрифтов
const (
	titleFontSize      = 25.0
	dayFontSize        = 24.0
	hourLabelFontSize  = 16.0
	blockTimeFontSize  = 15.0
	legendItemFontSize = 12.0
)

// Цветовая схема
var (
	bgColor          = color.RGBA{245, 246, 248, 255}
	textColor        = color.RGBA{80, 85, 90, 220}
	hourLabelColor   = color.RGBA{110, 115, 120, 200}
	hourLineColor    = color.NRGBA{150, 150, 150, 255}
	todayBgColor     = color.NRGBA{255, 99, 71, 90}
	evenDayColor     = color.NRGBA{240, 240, 240, 255}
	oddDayColor      = color.NRGBA{225, 225, 225, 255}
	currentTimeColor = color.NRGBA{255, 80, 80, 200}

	freeColor        = color.RGBA{133, 193, 85, 200}
	pendingColor     = color.RGBA{255, 214, 102, 235}
	bookedColor      = color.RGBA{255, 182, 193, 255}
	blockTextColor   = color.RGBA{20, 24, 28, 230}
	bookedTextColor  = color.RGBA{120, 40, 50, 255}
	blockShadowColor = color.RGBA{0, 0, 0, 20}
	legendItemColor  = color.RGBA{70, 74, 78, 220}
)

type hourRange struct {
	start int
	end   int
	total int
}

// Blocks собирает блоки из проекции расписания и занятых встреч.
// Учитываются только pending и approved встречи.
func Blocks(free []model.CalendarEvent, busy []*model.Appointment) []Block {
	blocks := make([]Block, 0, len(free)+len(busy))
	for _, ev := range free {
		blocks = append(blocks, Block{Start: ev.Start, End: ev.End, Kind: KindFree})
	}
	for _, a := range busy {
		var kind Kind
		switch a.Status {
		case model.AppointmentStatusApproved:
			kind = KindBooked
		case model.AppointmentStatusPending:
			kind = KindPending
		default:
			continue
		}
		label := ""
		if a.HospitalName != nil {
			label = *a.HospitalName
		}
		blocks = append(blocks, Block{Start: a.StartTime, End: a.EndTime, Kind: kind, Label: label})
	}
	return blocks
}

// Render рисует неделю, в которую попадает weekOf, и кодирует в PNG.
// Время блоков переводится в часовой пояс weekOf.
func Render(weekOf time.Time, blocks []Block, now time.Time) ([]byte, error) {
	loc := weekOf.Location()
	weekStart := timerange.WeekStart(weekOf)
	weekEnd := weekStart.AddDate(0, 0, daysInWeek)
	now = now.In(loc)

	byDay := groupByDay(blocks, weekStart, weekEnd, loc)
	hours := calculateHourRange(byDay)

	dc := gg.NewContext(ImageWidth, ImageHeight)
	dc.SetColor(bgColor)
	dc.Clear()

	dayWidth := (ImageWidth - leftLabelsWidth - legendWidth) / daysInWeek
	dayHeight := ImageHeight - headerHeight
	cellHeight := float64(dayHeight) / float64(hours.total)

	drawHeader(dc, weekStart)
	drawHourLabels(dc, hours, cellHeight)

	for i := 0; i < daysInWeek; i++ {
		date := weekStart.AddDate(0, 0, i)
		x := float64(leftLabelsWidth + i*dayWidth)
		y := float64(headerHeight)

		drawDayBackground(dc, x, y, dayWidth, dayHeight, i, timerange.SameDay(date, now))
		drawDayHeader(dc, date, x, y, dayWidth)
		drawHourLines(dc, x, y, dayWidth, hours, cellHeight)
		for _, b := range byDay[i] {
			drawBlock(dc, b, x, y, dayWidth, hours, cellHeight)
		}
	}

	if !now.Before(weekStart) && now.Before(weekEnd) {
		drawCurrentTimeLine(dc, now, hours, cellHeight, dayWidth)
	}
	drawLegend(dc, dayWidth)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// groupByDay раскладывает блоки по индексам дней (0 = понедельник).
// Свободное время рисуется первым, встречи поверх него.
func groupByDay(blocks []Block, weekStart, weekEnd time.Time, loc *time.Location) map[int][]Block {
	byDay := make(map[int][]Block)
	for _, b := range blocks {
		start, end := b.Start.In(loc), b.End.In(loc)
		if !end.After(weekStart) || !start.Before(weekEnd) || !end.After(start) {
			continue
		}
		b.Start, b.End = start, end
		idx := timerange.DayKey(start) - 1
		byDay[idx] = append(byDay[idx], b)
	}
	for idx := range byDay {
		sort.SliceStable(byDay[idx], func(i, j int) bool {
			return byDay[idx][i].Kind < byDay[idx][j].Kind
		})
	}
	return byDay
}

// calculateHourRange определяет диапазон часов для отображения
func calculateHourRange(byDay map[int][]Block) hourRange {
	minHour, maxHour := 24, 0
	for _, blocks := range byDay {
		for _, b := range blocks {
			startH := b.Start.Hour()
			endH := b.End.Hour()
			if b.End.Minute() > 0 || !timerange.SameDay(b.Start, b.End) {
				endH++
			}
			if !timerange.SameDay(b.Start, b.End) {
				endH = 24
			}
			minHour = min(minHour, startH)
			maxHour = max(maxHour, endH)
		}
	}

	if minHour == 24 {
		minHour, maxHour = defaultMinHour, defaultMaxHour
	}

	start := max(minHour-hourPaddingTop, 0)
	end := min(maxHour+hourPaddingBot, 24)
	return hourRange{start: start, end: end, total: end - start}
}

// drawHeader рисует заголовок с названием месяца
func drawHeader(dc *gg.Context, weekStart time.Time) {
	startMonth := weekStart.Month()
	endMonth := weekStart.AddDate(0, 0, daysInWeek-1).Month()

	title := formatting.MonthName(startMonth)
	if startMonth != endMonth {
		title += " - " + formatting.MonthName(endMonth)
	}
	title += fmt.Sprintf(" %d", weekStart.Year())

	loadFont(dc, titleFontSize, FontStyleBold)
	dc.SetColor(textColor)
	_, h := dc.MeasureString(title)
	dc.DrawStringAnchored(title, float64(leftLabelsWidth), float64(headerHeight)/8+h/2, 0, 0)
}

// drawHourLabels рисует колонку с часами слева
func drawHourLabels(dc *gg.Context, hours hourRange, cellHeight float64) {
	loadFont(dc, hourLabelFontSize, FontStyleMedium)
	dc.SetColor(hourLabelColor)

	for i := 0; i <= hours.total; i++ {
		y := float64(headerHeight) + float64(i)*cellHeight
		label := fmt.Sprintf("%02d:00", hours.start+i)
		dc.DrawStringAnchored(label, float64(leftLabelsWidth)-10, y, 1, 0.5)
	}
}

// drawDayBackground рисует фон дня
func drawDayBackground(dc *gg.Context, x, y float64, dayWidth, dayHeight, dayIndex int, isToday bool) {
	switch {
	case isToday:
		dc.SetColor(todayBgColor)
	case dayIndex%2 == 0:
		dc.SetColor(evenDayColor)
	default:
		dc.SetColor(oddDayColor)
	}
	dc.DrawRectangle(x, y, float64(dayWidth), float64(dayHeight))
	dc.Fill()
}

// drawDayHeader рисует название дня недели и дату
func drawDayHeader(dc *gg.Context, date time.Time, x, y float64, dayWidth int) {
	loadFont(dc, dayFontSize, FontStyleBold)
	dc.SetColor(textColor)
	dc.DrawStringAnchored(date.Format("02.01"), x+float64(dayWidth)/2, y, 0.5, -1)
	dc.DrawStringAnchored(formatting.WeekdayShortName(timerange.DayKey(date)), x+float64(dayWidth)/2, y, 0.5, -0.2)
}

// drawHourLines рисует горизонтальные линии часов
func drawHourLines(dc *gg.Context, x, y float64, dayWidth int, hours hourRange, cellHeight float64) {
	dc.SetLineWidth(0.3)
	dc.SetColor(hourLineColor)

	for i := 0; i <= hours.total; i++ {
		hy := y + float64(i)*cellHeight
		dc.DrawLine(x, hy, x+float64(dayWidth), hy)
		dc.Stroke()
	}
}

func hourOf(t time.Time, dayStart time.Time) float64 {
	return t.Sub(dayStart).Hours()
}

// drawBlock рисует один блок. Встречи рисуются уже свободного времени,
// чтобы рабочее окно оставалось видно под ними.
func drawBlock(dc *gg.Context, b Block, x, y float64, dayWidth int, hours hourRange, cellHeight float64) {
	dayStart := timerange.DayStart(b.Start)
	startHour := hourOf(b.Start, dayStart)
	endHour := min(hourOf(b.End, dayStart), float64(hours.end))

	blockY := y + (startHour-float64(hours.start))*cellHeight
	blockHeight := max((endHour-startHour)*cellHeight, minBlockHeight)

	inset := float64(dayPaddingX)
	if b.Kind != KindFree {
		inset += busyInsetPadding
	}
	blockX := x + inset
	blockWidth := float64(dayWidth) - inset - float64(dayPaddingX)

	fill := blockColor(b.Kind)

	// Тень
	dc.SetColor(blockShadowColor)
	dc.DrawRoundedRectangle(blockX+shadowOffset, blockY+2+shadowOffset, blockWidth, blockHeight-4, blockRadius)
	dc.Fill()

	dc.SetColor(fill)
	dc.DrawRoundedRectangle(blockX, blockY+2, blockWidth, blockHeight-4, blockRadius)
	dc.Fill()

	// Рамка
	dc.SetColor(darkenColor(fill, 0.8))
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(blockX, blockY+2, blockWidth, blockHeight-4, blockRadius)
	dc.Stroke()

	txtColor := blockTextColor
	if b.Kind == KindBooked {
		txtColor = bookedTextColor
	}

	loadFont(dc, blockTimeFontSize, FontStyleMedium)
	dc.SetColor(txtColor)
	txtX := blockX + 8
	txtY := blockY + 18
	dc.DrawStringAnchored(formatting.FormatTimeRange(b.Start, b.End), txtX, txtY, 0, 0)

	if b.Label != "" && blockHeight > 40 {
		label := []rune(b.Label)
		if len(label) > 18 {
			label = append(label[:15], []rune("...")...)
		}
		loadFont(dc, blockTimeFontSize-2, FontStyleDefault)
		dc.DrawStringAnchored(string(label), txtX, txtY+16, 0, 0)
	}
}

func blockColor(kind Kind) color.RGBA {
	switch kind {
	case KindPending:
		return pendingColor
	case KindBooked:
		return bookedColor
	default:
		return freeColor
	}
}

// darkenColor затемняет цвет на указанный множитель
func darkenColor(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}

// drawCurrentTimeLine рисует красную линию текущего времени
func drawCurrentTimeLine(dc *gg.Context, now time.Time, hours hourRange, cellHeight float64, dayWidth int) {
	current := hourOf(now, timerange.DayStart(now))
	if current < float64(hours.start) || current > float64(hours.end) {
		return
	}

	dayIdx := timerange.DayKey(now) - 1
	x := float64(leftLabelsWidth + dayIdx*dayWidth)
	y := float64(headerHeight) + (current-float64(hours.start))*cellHeight

	dc.SetColor(currentTimeColor)
	dc.SetLineWidth(2.0)
	dc.DrawLine(x, y, x+float64(dayWidth), y)
	dc.Stroke()
}

// drawLegend рисует легенду справа
func drawLegend(dc *gg.Context, dayWidth int) {
	items := []struct {
		label string
		clr   color.Color
	}{
		{"Рабочее время", freeColor},
		{"Ожидает ответа", pendingColor},
		{"Подтверждено", bookedColor},
	}

	const boxW, boxH = 20.0, 14.0
	liX := float64(leftLabelsWidth+daysInWeek*dayWidth) + 10
	liY := float64(ImageHeight) - 100.0 + 22

	for _, item := range items {
		dc.SetColor(item.clr)
		dc.DrawRoundedRectangle(liX, liY, boxW, boxH, 3)
		dc.Fill()

		loadFont(dc, legendItemFontSize, FontStyleDefault)
		dc.SetColor(legendItemColor)
		dc.DrawStringAnchored(item.label, liX+boxW+8, liY+boxH/2+1, 0, 0.2)
		liY += boxH + 14
	}
}
