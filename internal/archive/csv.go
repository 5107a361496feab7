package archive

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"signal_bot/internal/models"
)

const (
	PositionsFile = "order_history.csv"
	CandlesFile   = "kline_data.csv"
)

var (
	positionHeader = []string{
		"symbol", "entry_price", "exit_price", "quantity", "stop_loss", "take_profit",
		"pnl", "outcome", "reason", "opened_at", "closed_at", "client_order_id", "venue_order_id",
	}
	candleHeader = []string{"open_time", "close_time", "open", "high", "low", "close", "volume"}
)

// CSV дописывает в dir/order_history.csv и dir/kline_data.csv.
type CSV struct {
	mu sync.Mutex

	positions *csv.Writer
	candles   *csv.Writer
	pf, cf    *os.File
}

func NewCSV(dir string) (*CSV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create archive dir %s", dir)
	}
	pf, pw, err := openAppend(filepath.Join(dir, PositionsFile), positionHeader)
	if err != nil {
		return nil, err
	}
	cf, cw, err := openAppend(filepath.Join(dir, CandlesFile), candleHeader)
	if err != nil {
		_ = pf.Close()
		return nil, err
	}
	return &CSV{positions: pw, candles: cw, pf: pf, cf: cf}, nil
}

// openAppend открывает файл на дозапись; заголовок пишется только в пустой файл.
func openAppend(path string, header []string) (*os.File, *csv.Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open %s", path)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, errors.Wrapf(err, "stat %s", path)
	}
	w := csv.NewWriter(f)
	if st.Size() == 0 {
		if err := w.Write(header); err != nil {
			_ = f.Close()
			return nil, nil, errors.Wrap(err, "write header")
		}
		w.Flush()
		if err := w.Error(); err != nil {
			_ = f.Close()
			return nil, nil, errors.Wrap(err, "flush header")
		}
	}
	return f, w, nil
}

func (j *CSV) ArchivePosition(_ context.Context, p models.ClosedPosition) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	err := j.positions.Write([]string{
		p.Symbol,
		fl(p.EntryPrice),
		fl(p.ExitPrice),
		fl(p.Quantity),
		fl(p.StopLoss),
		fl(p.TakeProfit),
		fl(p.PnL),
		string(p.Outcome),
		string(p.Reason),
		p.OpenedAt.UTC().Format(time.RFC3339),
		p.ClosedAt.UTC().Format(time.RFC3339),
		p.ClientOrderID,
		p.VenueOrderID,
	})
	if err != nil {
		return errors.Wrap(err, "write position")
	}
	j.positions.Flush()
	return j.positions.Error()
}

func (j *CSV) ArchiveCandle(_ context.Context, c models.Candle) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.candles.Write(candleRow(c)); err != nil {
		return errors.Wrap(err, "write candle")
	}
	j.candles.Flush()
	return j.candles.Error()
}

func (j *CSV) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.positions.Flush()
	if err := j.positions.Error(); err != nil {
		return err
	}
	j.candles.Flush()
	if err := j.candles.Error(); err != nil {
		return err
	}
	if err := j.pf.Close(); err != nil {
		return err
	}
	return j.cf.Close()
}

func candleRow(c models.Candle) []string {
	return []string{
		c.OpenTime.UTC().Format(time.RFC3339),
		c.CloseTime.UTC().Format(time.RFC3339),
		fl(c.Open),
		fl(c.High),
		fl(c.Low),
		fl(c.Close),
		fl(c.Volume),
	}
}

// ReadCandlesCSV читает свечи в формате kline_data.csv.
// Время: RFC3339 или unix-миллисекунды. Строка заголовка пропускается.
func ReadCandlesCSV(r io.Reader) ([]models.Candle, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(candleHeader)
	cr.TrimLeadingSpace = true

	var out []models.Candle
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read line %d", line)
		}
		if line == 1 && strings.EqualFold(rec[0], candleHeader[0]) {
			continue
		}
		c, err := parseCandle(rec)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		out = append(out, c)
	}
}

func parseCandle(rec []string) (models.Candle, error) {
	var c models.Candle
	var err error
	if c.OpenTime, err = parseTime(rec[0]); err != nil {
		return c, err
	}
	if c.CloseTime, err = parseTime(rec[1]); err != nil {
		return c, err
	}
	nums := []*float64{&c.Open, &c.High, &c.Low, &c.Close, &c.Volume}
	for i, dst := range nums {
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[2+i]), 64)
		if err != nil {
			return c, fmt.Errorf("%s: %w", candleHeader[2+i], err)
		}
		*dst = v
	}
	return c, nil
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("time %q: %w", s, err)
	}
	return t.UTC(), nil
}

func fl(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
