package square

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"cosquare/internal/expr"
	"cosquare/internal/logging"
	"cosquare/internal/morphism"
	"cosquare/internal/parser"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	unknown    = morphism.Unknown
	dir        = morphism.Dir
	revDir     = morphism.RevDir
	iso        = morphism.Iso
	revIso     = morphism.RevIso
	mono       = morphism.Mono
	epi        = morphism.Epi
	revEpi     = morphism.RevEpi
	epiMono    = morphism.EpiMono
	revEpiMono = morphism.RevEpiMono
	zero       = morphism.Zero
)

func extract(t *testing.T, text string) *Square {
	t.Helper()
	sq, ok := Extract(parser.MustParse(text))
	require.True(t, ok, "%q should be a square", text)
	return sq
}

func TestExtract(t *testing.T) {
	sq := extract(t, "(a -> b)[(c -> a) -> (b -> d)] <=> (c <-> d)")

	assert.Equal(t, []string{"a", "b", "c", "d"}, sq.Objects())
	wantLabels := [4][3]int{{0, 1, 2}, {0, 1, 3}, {0, 2, 4}, {0, 3, 4}}
	if diff := cmp.Diff(wantLabels, sq.Labels); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([4]morphism.Kind{dir, revDir, dir, iso}, sq.Code); diff != "" {
		t.Errorf("code mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, [4]morphism.Kind{iso, iso, iso, iso}, Normalize(sq.Code))
}

func TestExtractCodes(t *testing.T) {
	tests := []struct {
		in   string
		want [4]morphism.Kind
	}{
		{"(a -> b)[(b -> c) -> (d -> b)] <=> (c -> d)", [4]morphism.Kind{dir, dir, revDir, dir}},
		{"f[(X !-> 1) -> (0 !-> Y)] <=> (0 <-> 1)", [4]morphism.Kind{unknown, mono, mono, revIso}},
		{"(A ->> B)[(C ->> A) -> (B ->> D)] <=> (D ->> C)", [4]morphism.Kind{epi, revEpi, epi, revEpi}},
		{"(A -> B)[(C -> A) -> (B -> D)] <=> (D -> C)", [4]morphism.Kind{dir, revDir, dir, revDir}},
		{"(A -> B)[(C -> A) -> (B -> D)] <=> (D <-> C)", [4]morphism.Kind{dir, revDir, dir, revIso}},
		{"(A <-> B)[(C <-> A) -> (B <-> D)] <=> (C -> D)", [4]morphism.Kind{iso, revIso, iso, dir}},
		{"(A <> B)[(C -> A) -> (B -> D)] <=> (C -> D)", [4]morphism.Kind{zero, revDir, dir, dir}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, extract(t, tt.in).Code)
		})
	}
}

func TestExtractRejectsOtherShapes(t *testing.T) {
	for _, in := range []string{
		"A",
		"A -> B",
		"X[Y]",
		"(A -> B)[C] <=> D",
		"(A -> B)[(A -> C) -> (B -> D)] <-> (C -> D)",
		"(A -> B)[(A -> C) -> (B -> D)] => (C -> D)",
		"(A -> B)[(A -> C) -> (B -> D)] <==> (C -> D)",
		"(C -> D) <=> (A -> B)[(A -> C) -> (B -> D)]",
	} {
		t.Run(in, func(t *testing.T) {
			_, ok := Extract(parser.MustParse(in))
			assert.False(t, ok)
		})
	}
}

// loopSquare builds a square whose edge at pos is a k-loop on A.
func loopSquare(pos int, k morphism.Kind) expr.Expr {
	var (
		a = expr.NewObject("A")
		b = expr.NewObject("B")
		c = expr.NewObject("C")
		d = expr.NewObject("D")
	)
	edges := [4]expr.Expr{expr.Dir(a, b), expr.Dir(a, c), expr.Dir(b, d), expr.Dir(c, d)}
	edges[pos] = expr.New(k, 1, a, a)
	return expr.IsoN(2, expr.NewPath(edges[0], expr.Dir(edges[1], edges[2])), edges[3])
}

func TestSelfLoopsBecomeIso(t *testing.T) {
	for pos := EdgeLeft; pos <= EdgeDiagonal; pos++ {
		for _, k := range []morphism.Kind{dir, mono, epi} {
			t.Run(EdgeNames[pos]+"/"+k.String(), func(t *testing.T) {
				sq, ok := Extract(loopSquare(pos, k))
				require.True(t, ok)
				assert.Equal(t, iso, sq.Code[pos])
			})
		}
		t.Run(EdgeNames[pos]+"/rev", func(t *testing.T) {
			sq, ok := Extract(loopSquare(pos, revDir))
			require.True(t, ok)
			assert.NotEqual(t, iso, sq.Code[pos])
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		code [4]morphism.Kind
		want bool
	}{
		{[4]morphism.Kind{dir, revDir, dir, iso}, true},
		{[4]morphism.Kind{revDir, dir, revDir, dir}, true},
		{[4]morphism.Kind{dir, iso, iso, revDir}, true},
		{[4]morphism.Kind{iso, dir, revDir, iso}, true},
		{[4]morphism.Kind{iso, iso, dir, revDir}, true},
		{[4]morphism.Kind{iso, iso, dir, dir}, false},
		{[4]morphism.Kind{iso, iso, iso, revDir}, true},
		{[4]morphism.Kind{iso, iso, iso, iso}, false},
		{[4]morphism.Kind{iso, iso, iso, mono}, false},
		{[4]morphism.Kind{mono, dir, dir, dir}, false},
		{[4]morphism.Kind{dir, dir, dir, dir}, false},
		{[4]morphism.Kind{unknown, unknown, unknown, unknown}, false},
	}
	for _, tt := range tests {
		got := Normalize(tt.code)
		if tt.want {
			assert.Equal(t, [4]morphism.Kind{iso, iso, iso, iso}, got, "%v", tt.code)
		} else {
			assert.Equal(t, tt.code, got, "%v", tt.code)
		}
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	n := len(morphism.All)
	for i := 0; i < n*n*n*n; i++ {
		code := [4]morphism.Kind{
			morphism.All[i%n],
			morphism.All[i/n%n],
			morphism.All[i/(n*n)%n],
			morphism.All[i/(n*n*n)],
		}
		once := Normalize(code)
		if twice := Normalize(once); twice != once {
			t.Fatalf("Normalize not idempotent on %v: %v then %v", code, once, twice)
		}
		if once != code && once != [4]morphism.Kind{iso, iso, iso, iso} {
			t.Fatalf("Normalize(%v) = %v, want the input or all iso", code, once)
		}
	}
}

func TestEval(t *testing.T) {
	tests := []struct {
		in   string
		want [4]morphism.Kind
	}{
		{"(A <-> B)[(A <-> C) -> (B <-> D)] <=> (C -> D)", [4]morphism.Kind{iso, iso, iso, iso}},
		{"(A ->> B)[(C ->> A) -> (B ->> D)] <=> (D ->> C)", [4]morphism.Kind{epiMono, revEpiMono, epiMono, revEpiMono}},
		{"f[(X !-> 1) -> (0 !-> Y)] <=> (0 <-> 1)", [4]morphism.Kind{unknown, mono, mono, revIso}},
		{"(A -> B)[(C -> A) -> (B -> D)] <=> (D -> C)", [4]morphism.Kind{dir, revDir, dir, revDir}},
		{"(A -> B)[(C -> A) -> (B -> D)] <=> (D <-> C)", [4]morphism.Kind{dir, revDir, dir, revIso}},
		{"(A <-> B)[(C <-> A) -> (B <-> D)] <=> (C -> D)", [4]morphism.Kind{iso, revIso, iso, iso}},
		{"(A <> B)[(C -> A) -> (B -> D)] <=> (C -> D)", [4]morphism.Kind{zero, revDir, dir, zero}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			sq := extract(t, tt.in)
			before := sq.Code
			assert.Equal(t, tt.want, sq.Eval())
			assert.Equal(t, before, sq.Code, "Eval must not modify the square")
		})
	}
}

func TestFacts(t *testing.T) {
	sq := extract(t, "f[(X !-> 1) -> (0 !-> Y)] <=> (0 <-> 1)")

	var got []string
	for _, f := range sq.Facts() {
		got = append(got, f.String())
	}
	// bind: f=1 X=2 1=3 0=4 Y=5; the diagonal was flipped to RevIso 1 <- 0.
	want := []string{
		"edge(2, 3).", "mono(2, 3).",
		"edge(4, 5).", "mono(4, 5).",
		"edge(4, 3).", "iso(4, 3).",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("facts mismatch (-want +got):\n%s", diff)
	}
}

func TestEvalDegradesWithoutAxioms(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logging.SetLogger(zap.New(core))
	t.Cleanup(func() { logging.SetLogger(nil) })

	sq := extract(t, "(A <-> B)[(A <-> C) -> (B <-> D)] <=> (C -> D)")
	inf := Inference{Engine: DefaultInference.Engine, AxiomPath: t.TempDir() + "/missing.mg"}

	assert.Equal(t, sq.Code, inf.Eval(context.Background(), sq))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "inference", logs.All()[0].LoggerName)

	_, err := inf.Infer(context.Background(), sq)
	assert.ErrorContains(t, err, "failed to load axioms")
}

func TestEvalRespectsFactLimit(t *testing.T) {
	sq := extract(t, "(A <-> B)[(A <-> C) -> (B <-> D)] <=> (C -> D)")
	inf := Inference{}
	inf.Engine.FactLimit = 3

	_, err := inf.Infer(context.Background(), sq)
	assert.ErrorContains(t, err, "fact limit exceeded")
	assert.Equal(t, sq.Code, inf.Eval(context.Background(), sq))
}

func TestRunReportsEngineStats(t *testing.T) {
	sq := extract(t, "(A <-> B)[(A <-> C) -> (B <-> D)] <=> (C -> D)")

	out := DefaultInference.Run(context.Background(), sq)
	require.False(t, out.Degraded)
	assert.Equal(t, sq.Eval(), out.Code)
	assert.Equal(t, len(sq.Facts()), out.Stats.BaseFacts)
	assert.Greater(t, out.Stats.TotalFacts, out.Stats.BaseFacts)
	assert.Equal(t, 4, out.Stats.PredicateCounts["edge"])

	missing := Inference{Engine: DefaultInference.Engine, AxiomPath: t.TempDir() + "/missing.mg"}
	out = missing.Run(context.Background(), sq)
	assert.True(t, out.Degraded)
	assert.Equal(t, sq.Code, out.Code)
	assert.Zero(t, out.Stats.TotalFacts)
}

func TestUpdate(t *testing.T) {
	want := "(A <-> B)[(A <-> C) -> (B <-> D)] <=> (C <-> D)"
	for _, in := range []string{
		"(A <-> B)[(A <-> C) -> (B <-> D)] <=> (C -> D)",
		"(A <-> B)[(A <-> C) -> (B <-> D)] <=> (D -> C)",
		"(A -> B)[(A <-> C) -> (B <-> D)] <=> (C <-> D)",
		"(A <-> B)[(A -> C) -> (B <-> D)] <=> (C <-> D)",
		"(A <-> B)[(C -> A) -> (B <-> D)] <=> (C <-> D)",
		"(A <-> B)[(A <-> C) -> (B -> D)] <=> (C <-> D)",
		"(A <-> B)[(A <-> C) -> (D -> B)] <=> (C <-> D)",
	} {
		t.Run(in, func(t *testing.T) {
			e := parser.MustParse(in)
			sq, ok := Extract(e)
			require.True(t, ok)
			assert.Equal(t, want, sq.Update(e).String())
		})
	}
}

func TestUpdateZeroThroughReversedLeg(t *testing.T) {
	e := parser.MustParse("(A <> B)[(C -> A) -> (B -> D)] <=> (C -> D)")
	sq, ok := Extract(e)
	require.True(t, ok)
	assert.Equal(t, "(A <> B)[(A <- C) -> (B -> D)] <=> (C <> D)", sq.Update(e).String())
}

func TestRewriteIsCopyOnWrite(t *testing.T) {
	in := "(A <-> B)[(A <-> C) -> (B <-> D)] <=> (C -> D)"
	e := parser.MustParse(in)
	sq, ok := Extract(e)
	require.True(t, ok)

	out := sq.Update(e)

	assert.Equal(t, in, e.String(), "input must not change")
	before, _ := edgesOf(e)
	after, _ := edgesOf(out)
	assert.Same(t, before[EdgeLeft], after[EdgeLeft])
	assert.Same(t, before[EdgeTop], after[EdgeTop])
	assert.Same(t, before[EdgeBottom], after[EdgeBottom])
	assert.NotSame(t, before[EdgeDiagonal], after[EdgeDiagonal])

	// The endpoints of the rewritten diagonal are shared with the input.
	d0 := before[EdgeDiagonal].(*expr.Morphism)
	d1 := after[EdgeDiagonal].(*expr.Morphism)
	assert.Same(t, d0.Ends, d1.Ends)
}

func TestRewriteUnchangedReturnsInput(t *testing.T) {
	e := parser.MustParse("(A <-> B)[(A <-> C) -> (B <-> D)] <=> (C <-> D)")
	sq, ok := Extract(e)
	require.True(t, ok)
	assert.Same(t, e, Rewrite(e, sq.Code))

	other := parser.MustParse("A -> B")
	assert.Same(t, other, Rewrite(other, [4]morphism.Kind{iso, iso, iso, iso}))
}
