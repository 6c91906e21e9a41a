// Package sample generates synthetic loan applications in the shape the
// default pipeline configuration expects, with a controlled share of
// missing and malformed values so every stage has something to do.
package sample

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"strconv"
	"time"
)

// Columns is the header written by Loans.
var Columns = []string{
	"id", "loan_amnt", "funded_amnt", "term", "int_rate", "installment", "grade",
	"emp_length", "home_ownership", "annual_inc", "loan_status", "issue_d",
	"purpose", "application_type", "mths_since_last_delinq", "revol_util",
}

// Options tunes generation. Zero values take the defaults noted per field.
type Options struct {
	// Records is the number of data rows. Default 1000.
	Records int
	// Seed makes output reproducible. Default 42.
	Seed uint64
	// End is the latest issue month. Default: the current month.
	End time.Time
	// MissingRate scales every column's missing share. Default 1.
	MissingRate float64
}

func (o Options) withDefaults() Options {
	if o.Records <= 0 {
		o.Records = 1000
	}
	if o.Seed == 0 {
		o.Seed = 42
	}
	if o.End.IsZero() {
		o.End = time.Now()
	}
	if o.MissingRate <= 0 {
		o.MissingRate = 1
	}
	return o
}

type weighted struct {
	value  string
	weight float64
}

var (
	homeOwnership = []string{"RENT", "OWN", "MORTGAGE", "OTHER"}
	empLengths    = []string{"< 1 year", "1 year", "2 years", "3 years", "4 years", "5 years", "6 years", "7 years", "8 years", "9 years", "10+ years"}
	purposes      = []string{
		"debt_consolidation", "credit_card", "home_improvement", "other", "major_purchase", "medical",
		"small_business", "car", "vacation", "moving", "wedding", "renewable_energy", "educational",
	}
	loanStatuses = []weighted{
		{"Fully Paid", 0.60}, {"Current", 0.15}, {"Charged Off", 0.15}, {"Late (31-120 days)", 0.05},
		{"In Grace Period", 0.02}, {"Late (16-30 days)", 0.02}, {"Default", 0.01},
	}
	grades           = []weighted{{"A", 0.10}, {"B", 0.20}, {"C", 0.30}, {"D", 0.20}, {"E", 0.10}, {"F", 0.05}, {"G", 0.05}}
	applicationTypes = []weighted{{"Individual", 0.85}, {"Joint App", 0.15}}
)

// Missing shares per column before MissingRate scaling.
const (
	missingHomeOwnership = 0.05
	missingEmpLength     = 0.08
	missingRevolUtil     = 0.10
	missingDelinq        = 0.55
	malformedRate        = 0.01
)

// Loans writes o.Records synthetic rows as CSV to w and returns the number
// of data rows written.
func Loans(w io.Writer, o Options) (int, error) {
	o = o.withDefaults()
	g := &generator{rnd: rand.New(rand.NewPCG(o.Seed, o.Seed^0x9e3779b97f4a7c15)), opt: o}

	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return 0, fmt.Errorf("sample: %w", err)
	}
	for i := 0; i < o.Records; i++ {
		if err := cw.Write(g.row(i + 1)); err != nil {
			return i, fmt.Errorf("sample: row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return o.Records, fmt.Errorf("sample: %w", err)
	}
	return o.Records, nil
}

type generator struct {
	rnd *rand.Rand
	opt Options
}

func (g *generator) row(id int) []string {
	amount := clamp(g.rnd.NormFloat64()*8000+15000, 1000, 40000)
	funded := amount * (0.95 + 0.05*g.rnd.Float64())
	rate := clamp(g.rnd.NormFloat64()*4+12.5, 5, 30)
	term := 36
	if g.rnd.Float64() < 0.3 {
		term = 60
	}
	income := clamp(math.Exp(g.rnd.NormFloat64()*0.8+10.5), 20000, 300000)

	rateCell := strconv.FormatFloat(rate, 'f', 2, 64) + "%"
	if g.rnd.Float64() < malformedRate {
		rateCell = "n/a%"
	}

	return []string{
		strconv.Itoa(id),
		money(amount),
		money(funded),
		fmt.Sprintf(" %d months", term),
		rateCell,
		money(installment(amount, rate, term)),
		g.pick(grades),
		g.maybe(missingEmpLength, empLengths[g.rnd.IntN(len(empLengths))]),
		g.maybe(missingHomeOwnership, homeOwnership[g.rnd.IntN(len(homeOwnership))]),
		money(income),
		g.pick(loanStatuses),
		g.issueMonth(),
		purposes[g.rnd.IntN(len(purposes))],
		g.pick(applicationTypes),
		g.maybe(missingDelinq, strconv.Itoa(g.rnd.IntN(120))),
		g.maybe(missingRevolUtil, strconv.FormatFloat(math.Round(g.rnd.Float64()*1000)/10, 'f', 1, 64)+"%"),
	}
}

// maybe returns "" with probability p scaled by MissingRate, otherwise v.
func (g *generator) maybe(p float64, v string) string {
	if g.rnd.Float64() < p*g.opt.MissingRate {
		return ""
	}
	return v
}

func (g *generator) pick(choices []weighted) string {
	x := g.rnd.Float64()
	for _, c := range choices {
		if x < c.weight {
			return c.value
		}
		x -= c.weight
	}
	return choices[len(choices)-1].value
}

// issueMonth is a "Jan-2006" month within the two years before End.
func (g *generator) issueMonth() string {
	end := time.Date(g.opt.End.Year(), g.opt.End.Month(), 1, 0, 0, 0, 0, time.UTC)
	return end.AddDate(0, -g.rnd.IntN(24), 0).Format("Jan-2006")
}

// installment is the fixed monthly payment of an amortised loan.
func installment(amount, ratePct float64, months int) float64 {
	r := ratePct / 100 / 12
	f := math.Pow(1+r, float64(months))
	return amount * r * f / (f - 1)
}

func money(v float64) string { return strconv.FormatFloat(math.Round(v*100)/100, 'f', 2, 64) }

func clamp(v, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, v)) }
