package chart

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/YuminosukeSato/diagnosis/pkg/errors"
)

// DefaultFormat is used when the save path has no extension.
const DefaultFormat = "png"

type options struct {
	savePath  string
	dpi       int
	width     vg.Length
	height    vg.Length
	displayer Displayer
}

func newOptions(opts []Option) *options {
	o := &options{dpi: DefaultDPI, width: DefaultWidth, height: DefaultHeight}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Option configures Save, Render and Show.
type Option func(*options)

// WithSavePath makes Show save the chart to path before displaying it.
func WithSavePath(path string) Option {
	return func(o *options) {
		o.savePath = path
	}
}

// WithDPI sets the resolution of raster formats (png, jpg, tif).
func WithDPI(dpi int) Option {
	return func(o *options) {
		o.dpi = dpi
	}
}

// WithSize sets the canvas size.
func WithSize(width, height vg.Length) Option {
	return func(o *options) {
		o.width = width
		o.height = height
	}
}

// WithDisplayer overrides the default Displayer for one Show call.
func WithDisplayer(d Displayer) Option {
	return func(o *options) {
		o.displayer = d
	}
}

// Render は図を指定フォーマットでメモリ上に描画します。
// 描画中のpanicは PanicError に変換されます。
func Render(c Chart, format string, opts ...Option) ([]byte, error) {
	o := newOptions(opts)
	if o.dpi <= 0 {
		return nil, errors.NewValidationError("dpi", "must be positive", o.dpi)
	}
	if o.width <= 0 || o.height <= 0 {
		return nil, errors.NewValidationError("size", "width and height must be positive", [2]vg.Length{o.width, o.height})
	}

	var buf bytes.Buffer
	err := errors.SafeExecute("chart.Render", func() error {
		p, err := c.Plot()
		if err != nil {
			return err
		}
		return writePlot(&buf, p, strings.ToLower(format), o)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "render %q", c.ChartTitle())
	}
	return buf.Bytes(), nil
}

func writePlot(buf *bytes.Buffer, p *plot.Plot, format string, o *options) error {
	switch format {
	case "png", "jpg", "jpeg", "tif", "tiff":
		img := vgimg.NewWith(vgimg.UseWH(o.width, o.height), vgimg.UseDPI(o.dpi))
		p.Draw(draw.New(img))
		var err error
		switch format {
		case "png":
			_, err = vgimg.PngCanvas{Canvas: img}.WriteTo(buf)
		case "jpg", "jpeg":
			_, err = vgimg.JpegCanvas{Canvas: img}.WriteTo(buf)
		default:
			_, err = vgimg.TiffCanvas{Canvas: img}.WriteTo(buf)
		}
		return err
	default:
		// ベクター形式は解像度に依存しない
		w, err := p.WriterTo(o.width, o.height, format)
		if err != nil {
			return errors.NewValueErrorf("chart.Render", "unsupported format %q: %v", format, err)
		}
		_, err = w.WriteTo(buf)
		return err
	}
}

// Save は図を path に保存し、実際に書き込んだパスを返します。
//
// フォーマットは拡張子 (png, jpg, jpeg, tif, tiff, svg, pdf, eps, tex) で決まり、
// 拡張子がない場合は ".png" を付けて PNG で保存します。描画はメモリ上で完了してから
// 一時ファイル経由で書き込むため、失敗しても中途半端なファイルは残りません。
func Save(c Chart, path string, opts ...Option) (string, error) {
	if path == "" {
		return "", errors.NewValidationError("path", "must not be empty", path)
	}
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	if format == "" {
		format = DefaultFormat
		path += "." + DefaultFormat
	}

	data, err := Render(c, format, opts...)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return "", errors.Wrapf(err, "save chart to %s", path)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return "", errors.Wrapf(err, "save chart to %s", path)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", errors.Wrapf(err, "save chart to %s", path)
	}
	if err := tmp.Close(); err != nil {
		return "", errors.Wrapf(err, "save chart to %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", errors.Wrapf(err, "save chart to %s", path)
	}
	return path, nil
}
