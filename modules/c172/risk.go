package c172

import (
	"context"
	"slices"
	"strings"

	"github.com/specialistvlad/pohcalc/internal/ctxlog"
	"github.com/specialistvlad/pohcalc/internal/engine"
	"github.com/specialistvlad/pohcalc/internal/field"
	"github.com/specialistvlad/pohcalc/internal/value"
)

// riskPoints are the points of checked items and selected options. A checked
// item not listed counts one point; a selected option not listed counts
// none.
var riskPoints = map[string]float64{
	"RiskDepRwyIce":    5,
	"RiskDepRwyWater":  5,
	"RiskDepRwyWet":    1,
	"RiskDepRwySoft":   5,
	"RiskDepCeiling":   10,
	"RiskDestNight":    5,
	"RiskDestCeiling":  5,
	"RiskDestVis":      5,
	"RiskDestIce":      5,
	"RiskDestRwyWater": 5,
	"RiskDestRwyWet":   1,
	"RiskDestRwySoft":  5,
	"RiskDestRwyIce":   5,
	"RiskDestWind":     3,
	"RiskDestXWind":    5,
	"RiskDestLLWS":     5,
	"RiskDestWideLIFR": 5,
	"RiskEnrtMntn":     5,
	"RiskCruiseIce":    5,
	"RiskEnrtWater":    5,
	"RiskEnrtNight":    5,
	"RiskCur":          3,
	"RiskIllness":      3,
	"RiskPersonal":     3,
	"RiskBusiness":     3,
	"RiskSigmet":       5,
	"RiskRedPrecip":    100,
	"RiskFcstIce":      5,
	"RiskFzRain":       100,
	"RiskIcePirep":     100,
	"RiskTS":           100,
	"RiskAutoPilot":    5,
}

// ifrRisks only count when flying IFR.
var ifrRisks = map[string]bool{
	"RiskDepIMC":        true,
	"RiskDepCeiling":    true,
	"RiskDepClearance":  true,
	"RiskCruiseIMC":     true,
	"RiskCruiseIce":     true,
	"RiskDestCeilLtFAF": true,
	"RiskDestCeiling":   true,
	"RiskDestVis":       true,
	"RiskDestDeepIMC":   true,
	"RiskDestWideIMC":   true,
	"RiskDestWideLIFR":  true,
}

// combinedRisk adds points when every item of all and, if given, at least
// one item of anyOf are present.
type combinedRisk struct {
	all    []string
	anyOf  []string
	points float64
}

var combinedRisks = []combinedRisk{
	{all: []string{"RiskEnrtWater", "RiskEnrtNight"}, points: 100},
	{all: []string{"RiskAutoPilot"}, anyOf: []string{"RiskDepIMC", "RiskCruiseIMC", "RiskDestIMC"}, points: 6},
	{all: []string{"RiskDestCTL", "RiskDestNight"}, anyOf: []string{"RiskDestIMC", "RiskDestTerrain"}, points: 100},
	{all: []string{"RiskCur"}, anyOf: []string{
		"RiskDepIMC", "RiskCruiseIMC", "RiskDestIMC", "RiskDepNight", "RiskEnrtNight", "RiskDestNight",
	}, points: 2},
	{all: []string{"RiskDestNight", "RiskDestVasi"}, anyOf: []string{"RiskDestApchVis", "RiskDestApchNP"}, points: 4},
	{all: []string{"RiskDestCTL", "RiskDestIMC"}, points: 3},
}

// Risk levels by total points.
const (
	riskMedium = 5
	riskHigh   = 10
	riskNoGo   = 30
)

// riskAssessment reads the risk page of one session.
type riskAssessment struct {
	s   *engine.Scope
	vfr bool

	// inputs are the risk items in declaration order.
	inputs []*field.Descriptor
}

func newRiskAssessment(s *engine.Scope) *riskAssessment {
	rules, _ := s.Get("RiskFlightRules").Str()
	ra := &riskAssessment{s: s, vfr: rules == "RiskVFR"}
	cat := s.Registry().Catalog()
	for _, id := range cat.IDs() {
		if d := cat.Descriptor(id); d.Input && d.Page == s.Page() {
			ra.inputs = append(ra.inputs, d)
		}
	}
	return ra
}

// checked reports whether a checkbox item is set and counts under the
// current flight rules.
func (ra *riskAssessment) checked(id string) bool {
	if ra.vfr && ifrRisks[id] {
		return false
	}
	b, _ := ra.s.Get(id).Bool()
	return b
}

// present reports whether a checkbox item is checked or an option of that
// name is selected.
func (ra *riskAssessment) present(id string) bool {
	for _, d := range ra.inputs {
		switch {
		case d.ID == id && d.Kind == field.KindBool:
			return ra.checked(id)
		case d.Kind == field.KindEnum:
			if v, _ := ra.s.Get(d.ID).Str(); v == id {
				return true
			}
		}
	}
	return false
}

// points returns the points of one risk input.
func (ra *riskAssessment) points(d *field.Descriptor) float64 {
	key := d.ID
	switch d.Kind {
	case field.KindBool:
		if !ra.checked(d.ID) {
			return 0
		}
		if p, ok := riskPoints[key]; ok {
			return p
		}
		return 1
	case field.KindEnum:
		key, _ = ra.s.Get(d.ID).Str()
		return riskPoints[key]
	}
	return 0
}

// score totals the risk and collects the items counting more than a point.
func (ra *riskAssessment) score() (total float64, high []string) {
	addHigh := func(id string) {
		if !slices.Contains(high, id) {
			high = append(high, id)
		}
	}
	for _, cr := range combinedRisks {
		if !ra.matches(cr) {
			continue
		}
		total += cr.points
		if cr.points <= 1 {
			continue
		}
		for _, id := range slices.Concat(cr.all, cr.anyOf) {
			if ra.isCheckbox(id) && ra.checked(id) {
				addHigh(id)
			}
		}
	}
	for _, d := range ra.inputs {
		p := ra.points(d)
		if p > 1 {
			addHigh(d.ID)
		}
		total += p
	}
	return total, high
}

func (ra *riskAssessment) matches(cr combinedRisk) bool {
	for _, id := range cr.all {
		if !ra.present(id) {
			return false
		}
	}
	if len(cr.anyOf) == 0 {
		return true
	}
	return slices.ContainsFunc(cr.anyOf, ra.present)
}

func (ra *riskAssessment) isCheckbox(id string) bool {
	return slices.ContainsFunc(ra.inputs, func(d *field.Descriptor) bool {
		return d.ID == id && d.Kind == field.KindBool
	})
}

// riskLevel names the band of a total.
func riskLevel(total float64) string {
	switch {
	case total < riskMedium:
		return "Low"
	case total < riskHigh:
		return "Med"
	case total < riskNoGo:
		return "High"
	default:
		return "NG"
	}
}

// ComputeRisk totals the flight risk assessment and rates it.
func ComputeRisk(ctx context.Context, s *engine.Scope) error {
	total, high := newRiskAssessment(s).score()
	level := riskLevel(total)

	s.Set("RiskScore", value.Number(total))
	if total >= riskHigh {
		s.SetStyled("RiskLevel", value.String(level), alert)
	} else {
		s.Set("RiskLevel", value.String(level))
	}
	s.Set("RiskHighItems", value.String(strings.Join(high, ", ")))

	ctxlog.FromContext(ctx).Debug("Risk assessed.", "score", total, "level", level, "high", len(high))
	return nil
}
