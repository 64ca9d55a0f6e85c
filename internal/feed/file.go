package feed

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/errors"

	"lightning/internal/market"
)

// FileLoader reads one JSON tick record per line from files addressed
// by a pattern. The pattern substitutes {code} and {day}, e.g.
// "./data/{code}_{day}.jsonl".
type FileLoader struct {
	pattern string
}

// NewFileLoader creates a loader over the given path pattern.
func NewFileLoader(pattern string) *FileLoader {
	return &FileLoader{pattern: pattern}
}

type tickRecord struct {
	Code       string       `json:"code"`
	Time       int64        `json:"time"`
	Seq        uint32       `json:"seq"`
	Price      float64      `json:"price"`
	Open       float64      `json:"open"`
	High       float64      `json:"high"`
	Low        float64      `json:"low"`
	Standard   float64      `json:"standard"`
	Volume     uint64       `json:"volume"`
	TradingDay uint32       `json:"tradingDay"`
	Bids       [][2]float64 `json:"bids"`
	Asks       [][2]float64 `json:"asks"`
}

// LoadTicks reads and decodes the instrument-day file. A missing file
// yields no ticks: the instrument simply has no session that day.
func (l *FileLoader) LoadTicks(code string, day uint32) ([]market.Tick, error) {
	path := l.resolve(code, day)
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "open tick file %s", path)
	}
	defer file.Close()

	var ticks []market.Tick
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec tickRecord
		if err := sonic.Unmarshal(raw, &rec); err != nil {
			return nil, errors.Wrapf(err, "decode %s line %d", path, line)
		}
		if rec.Code != code {
			continue
		}
		ticks = append(ticks, rec.toTick())
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "read tick file %s", path)
	}
	return ticks, nil
}

func (l *FileLoader) resolve(code string, day uint32) string {
	path := strings.ReplaceAll(l.pattern, "{code}", code)
	return strings.ReplaceAll(path, "{day}", strconv.FormatUint(uint64(day), 10))
}

func (r *tickRecord) toTick() market.Tick {
	tick := market.Tick{
		Code:       r.Code,
		Time:       r.Time,
		Seq:        r.Seq,
		Price:      r.Price,
		Open:       r.Open,
		High:       r.High,
		Low:        r.Low,
		Standard:   r.Standard,
		Volume:     r.Volume,
		TradingDay: r.TradingDay,
	}
	for i := 0; i < len(r.Bids) && i < market.DepthLevels; i++ {
		tick.Bids[i] = market.Level{Price: r.Bids[i][0], Volume: uint32(r.Bids[i][1])}
	}
	for i := 0; i < len(r.Asks) && i < market.DepthLevels; i++ {
		tick.Asks[i] = market.Level{Price: r.Asks[i][0], Volume: uint32(r.Asks[i][1])}
	}
	return tick
}
