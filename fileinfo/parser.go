package fileinfo

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/duet3d/gcode/config"
	"github.com/duet3d/gcode/gcode"
	"github.com/duet3d/gcode/gcodeerr"
	"github.com/duet3d/gcode/internal/grainedtime"
)

func unixTime(sec int64) time.Time { return time.Unix(sec, 0) }

// Parse populates a ParsedFileInfo by scanning at most cfg.
// FileInfoReadLimitHeader bytes from the start of src and cfg.
// FileInfoReadLimitFooter bytes from its end (spec.md 4.E). virtualName is
// stored verbatim as FileName; modTimeUnix is the file's raw modification
// time, rounded down to FAT/FatFs granularity via grainedtime.
//
// ctx is checked once per scanned line in both passes; a cancelled context
// aborts the scan with gcodeerr.Cancelled, per spec.md's per-line
// cancellation requirement.
func Parse(ctx context.Context, src ReadAtCloser, size, modTimeUnix int64, virtualName string, cfg *config.Compiled) (ParsedFileInfo, error) {
	info := ParsedFileInfo{
		FileName:     virtualName,
		Size:         size,
		LastModified: grainedtime.FromModTime(unixTime(modTimeUnix)),
	}

	headerBudget := cfg.FileInfoReadLimitHeader + int64(cfg.FileInfoReadBufferSize)
	headerSrc := io.NewSectionReader(src, 0, minInt64(headerBudget, size))
	if err := scanHeader(ctx, headerSrc, cfg, &info); err != nil {
		return info, err
	}

	footerBudget := cfg.FileInfoReadLimitFooter + int64(cfg.FileInfoReadBufferSize)
	rr := NewReverseLineReader(src, size, cfg.FileInfoReadBufferSize)
	footerSrc := io.LimitReader(NewLineFeed(rr), footerBudget)
	if err := scanFooter(ctx, footerSrc, cfg, &info); err != nil {
		return info, err
	}

	finalizeNumLayers(&info)
	return info, nil
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// scanHeader runs the tokenizer forward over r, tracking G90/G91 mode the
// ordinary way: a mode-setting code governs every code that follows it.
func scanHeader(ctx context.Context, r io.Reader, cfg *config.Compiled, info *ParsedFileInfo) error {
	tok := gcode.NewReusableTokenizer(r)
	inRelative := false
	emptyStreak := 0

	var code gcode.Code
	for {
		if err := ctx.Err(); err != nil {
			return &gcodeerr.Cancelled{Op: "header scan"}
		}

		err := tok.Parse(&code)
		if err == io.EOF {
			return nil
		}
		if _, ok := err.(*gcode.ParseError); ok {
			// Malformed line: spec.md 7 says skip it and keep scanning,
			// the file may contain non-code noise.
			continue
		}
		if err != nil {
			return &gcodeerr.IoError{Op: "header scan", Err: err}
		}

		progressed := false

		if code.Type == gcode.TypeGCode {
			switch code.MajorNumber {
			case 90:
				inRelative = false
			case 91:
				inRelative = true
			case 0, 1:
				if info.FirstLayerHeight == 0 && !inRelative {
					if p, ok := code.Param('Z'); ok {
						if z, zerr := p.AsFloat(); zerr == nil && z > 0 && z <= cfg.MaxLayerHeight {
							info.FirstLayerHeight = z
							progressed = true
						}
					}
				}
			}
		}

		if code.Comment != "" && applyCommentExtractors(code.Comment, cfg, info) {
			progressed = true
		}

		if progressed {
			emptyStreak = 0
		} else {
			emptyStreak++
			if emptyStreak >= 2 && info.IsComplete() {
				return nil
			}
		}
	}
}

// heightCandidate is a Z move seen during the footer scan whose mode
// (absolute vs relative) hasn't been resolved yet: since we're reading
// backward, the mode-setting G90/G91 that actually governs it appears
// *later* in our scan (it comes earlier in the file).
type heightCandidate struct {
	z       float64
	comment string
}

// scanFooter runs the tokenizer over r (fed lines in reverse file order via
// LineFeed), with G90/G91 semantics inverted from the header scan: a move's
// governing mode-setter is the next one encountered while continuing to
// scan backward, not the last one already seen. Candidates are held pending
// until that resolution arrives; the first one resolved as absolute (with
// no leading-"E" comment) wins, since it's the last such move in the file.
func scanFooter(ctx context.Context, r io.Reader, cfg *config.Compiled, info *ParsedFileInfo) error {
	tok := gcode.NewReusableTokenizer(r)
	emptyStreak := 0
	var pending *heightCandidate

	var code gcode.Code
	for {
		if err := ctx.Err(); err != nil {
			return &gcodeerr.Cancelled{Op: "footer scan"}
		}

		err := tok.Parse(&code)
		if err == io.EOF {
			break
		}
		if _, ok := err.(*gcode.ParseError); ok {
			continue
		}
		if err != nil {
			return &gcodeerr.IoError{Op: "footer scan", Err: err}
		}

		progressed := false
		heightBefore := info.Height

		if code.Type == gcode.TypeGCode {
			switch code.MajorNumber {
			case 90:
				if info.Height == 0 {
					resolveHeightCandidate(&pending, true, info)
				}
			case 91:
				if info.Height == 0 {
					resolveHeightCandidate(&pending, false, info)
				}
			case 0, 1:
				if info.Height == 0 && pending == nil {
					if p, ok := code.Param('Z'); ok {
						if z, zerr := p.AsFloat(); zerr == nil {
							pending = &heightCandidate{z: z, comment: code.Comment}
							progressed = true
						}
					}
				}
			}
		}

		if code.Comment != "" && applyCommentExtractors(code.Comment, cfg, info) {
			progressed = true
		}
		if info.Height != heightBefore {
			progressed = true
		}

		if progressed {
			emptyStreak = 0
		} else {
			emptyStreak++
			if emptyStreak >= 2 && info.IsComplete() {
				break
			}
		}
	}

	// No mode-setter resolved the last pending candidate before the scan
	// ended: RepRapFirmware's default is absolute positioning, so resolve
	// it as such rather than discarding a perfectly good height.
	if pending != nil && info.Height == 0 {
		resolveHeightCandidate(&pending, true, info)
	}
	return nil
}

func resolveHeightCandidate(pending **heightCandidate, absolute bool, info *ParsedFileInfo) {
	c := *pending
	*pending = nil
	if c == nil || !absolute {
		return
	}
	if strings.HasPrefix(strings.TrimSpace(c.comment), "E") {
		return
	}
	info.Height = c.z
}
