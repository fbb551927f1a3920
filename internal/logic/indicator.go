package logic

import "time"

// Pattern is a predefined glyph on the pixel matrix.
type Pattern int

const (
	PatternNone        Pattern = iota // matrix cleared
	PatternOK                         // check mark
	PatternExclamation                // "!"
	PatternX                          // "X"
)

func (p Pattern) String() string {
	switch p {
	case PatternOK:
		return "OK"
	case PatternExclamation:
		return "EXCLAMATION"
	case PatternX:
		return "X"
	default:
		return "NONE"
	}
}

// Beep describes a tone burst: one tone plus Repeats more, separated by a
// fixed gap.
type Beep struct {
	Duration  time.Duration
	Repeats   int
	Frequency int // Hz
}

// Tone bursts used by the indicator and the input handler.
var (
	BeepAttention = Beep{Duration: 150 * time.Millisecond, Repeats: 0, Frequency: 1500}
	BeepAlert     = Beep{Duration: 100 * time.Millisecond, Repeats: 1, Frequency: 2000}
	BeepCritical  = Beep{Duration: 80 * time.Millisecond, Repeats: 2, Frequency: 2500}
	BeepClick     = Beep{Duration: 100 * time.Millisecond, Repeats: 0, Frequency: 2000}
)

// IndicatorOutput is the desired state of every indicator for one cycle.
type IndicatorOutput struct {
	Green   bool
	Red     bool
	Pattern Pattern
	Color   Color
	Beep    *Beep // nil = no tone this cycle
	Silence bool  // force the buzzer off
}

// IndicatorFor maps a class to indicator outputs. Before configuration is
// complete everything is dark and silent. visible is the current blink phase.
func IndicatorFor(class Class, configured, visible bool) IndicatorOutput {
	if !configured {
		return IndicatorOutput{Pattern: PatternNone, Color: ColorOff, Silence: true}
	}

	switch class {
	case ClassNormal:
		return IndicatorOutput{Green: true, Pattern: PatternOK, Color: ColorGreen, Silence: true}

	case ClassAttention:
		out := IndicatorOutput{Green: true, Red: true, Pattern: PatternNone, Color: ColorOff}
		if visible {
			out.Pattern = PatternExclamation
			out.Color = ColorYellow
			out.Beep = beep(BeepAttention)
		}
		return out

	case ClassAlert:
		out := IndicatorOutput{Red: true, Pattern: PatternNone, Color: ColorOff}
		if visible {
			out.Pattern = PatternX
			out.Color = ColorRed
			out.Beep = beep(BeepAlert)
		}
		return out

	case ClassCritical:
		out := IndicatorOutput{Red: visible, Pattern: PatternNone, Color: ColorOff}
		if visible {
			out.Pattern = PatternX
			out.Color = ColorRed
			out.Beep = beep(BeepCritical)
		}
		return out

	default:
		return IndicatorOutput{Pattern: PatternNone, Color: ColorOff, Silence: true}
	}
}

func beep(b Beep) *Beep {
	return &b
}
