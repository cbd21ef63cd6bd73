// Package driver generates the TPC-C population and issues the
// transaction mix against a store.
package driver

import (
	"math/rand"
	"strings"
)

// NURandC holds the per-run constants of the non-uniform random function.
type NURandC struct {
	CLast           int32
	CID             int32
	OrderLineItemID int32
}

// MakeRandomNURandC draws a fresh constant set for the load phase.
func MakeRandomNURandC(g *Generator) NURandC {
	return NURandC{
		CLast:           int32(g.rng.Intn(256)),
		CID:             int32(g.rng.Intn(1024)),
		OrderLineItemID: int32(g.rng.Intn(8192)),
	}
}

// MakeRandomNURandCForRun draws run-phase constants compatible with the
// load-phase set: the C_LAST deltas permitted by the workload definition
// are [65, 119] excluding 96 and 112.
func MakeRandomNURandCForRun(g *Generator, load NURandC) NURandC {
	c := MakeRandomNURandC(g)
	for {
		delta := c.CLast - load.CLast
		if delta < 0 {
			delta = -delta
		}
		if delta >= 65 && delta <= 119 && delta != 96 && delta != 112 {
			break
		}
		c.CLast = int32(g.rng.Intn(256))
	}
	return c
}

// Generator produces the random values the workload needs. It wraps a
// seeded PRNG so loads are reproducible.
type Generator struct {
	rng *rand.Rand
	c   NURandC
}

// NewGenerator seeds a generator.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// SetC installs the NURand constant set.
func (g *Generator) SetC(c NURandC) { g.c = c }

// C returns the current NURand constant set.
func (g *Generator) C() NURandC { return g.c }

// Number returns a uniform value in [lower, upper].
func (g *Generator) Number(lower, upper int32) int32 {
	return lower + int32(g.rng.Int63n(int64(upper-lower+1)))
}

// NumberExcluding returns a uniform value in [lower, upper] except
// excluded.
func (g *Generator) NumberExcluding(lower, upper, excluded int32) int32 {
	n := g.Number(lower, upper-1)
	if n >= excluded {
		n++
	}
	return n
}

// NURand is the TPC-C non-uniform random function over [x, y].
func (g *Generator) NURand(a, x, y int32) int32 {
	var c int32
	switch a {
	case 255:
		c = g.c.CLast
	case 1023:
		c = g.c.CID
	case 8191:
		c = g.c.OrderLineItemID
	}
	return ((g.Number(0, a)|g.Number(x, y))+c)%(y-x+1) + x
}

const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
const digits = "0123456789"

// AString returns a random alphanumeric string with a length in
// [minLen, maxLen].
func (g *Generator) AString(minLen, maxLen int32) string {
	return g.randomString(minLen, maxLen, letters)
}

// NString returns a random numeric string with a length in
// [minLen, maxLen].
func (g *Generator) NString(minLen, maxLen int32) string {
	return g.randomString(minLen, maxLen, digits)
}

func (g *Generator) randomString(minLen, maxLen int32, alphabet string) string {
	n := g.Number(minLen, maxLen)
	var b strings.Builder
	b.Grow(int(n))
	for i := int32(0); i < n; i++ {
		b.WriteByte(alphabet[g.rng.Intn(len(alphabet))])
	}
	return b.String()
}

// nameSyllables builds the synthetic last names.
var nameSyllables = [...]string{
	"BAR", "OUGHT", "ABLE", "PRI", "PRES",
	"ESE", "ANTI", "CALLY", "ATION", "EING",
}

// MakeLastName renders number (0..999) as a three-syllable last name.
func MakeLastName(number int32) string {
	return nameSyllables[number/100] + nameSyllables[(number/10)%10] + nameSyllables[number%10]
}

// LastName draws a non-uniform last name for a district with maxCID
// customers.
func (g *Generator) LastName(maxCID int32) string {
	limit := int32(999)
	if maxCID-1 < limit {
		limit = maxCID - 1
	}
	return MakeLastName(g.NURand(255, 0, limit))
}
