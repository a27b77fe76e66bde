package chess

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	notnil "github.com/notnil/chess"
)

// Positions with castling, en passant, promotions and pins on both sides.
var oraclePositions = []string{
	InitialFEN,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
	"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3",
}

var promotionLetters = map[notnil.PieceType]string{
	notnil.Queen:  "q",
	notnil.Rook:   "r",
	notnil.Bishop: "b",
	notnil.Knight: "n",
}

// referenceMoves returns the legal moves notnil/chess finds, as UCI and SAN.
func referenceMoves(t *testing.T, fen string) (uci, san []string) {
	t.Helper()
	opt, err := notnil.FEN(fen)
	if err != nil {
		t.Fatalf("notnil rejected %s: %v", fen, err)
	}
	game := notnil.NewGame(opt)
	pos := game.Position()
	for _, m := range game.ValidMoves() {
		uci = append(uci, m.S1().String()+m.S2().String()+promotionLetters[m.Promo()])
		san = append(san, notnil.AlgebraicNotation{}.Encode(pos, m))
	}
	sort.Strings(uci)
	sort.Strings(san)
	return uci, san
}

// ourMoves plays every legal move on a copy of the game and records it.
func ourMoves(t *testing.T, g *Game) (uci, san []string) {
	t.Helper()
	snap := g.Snapshot()
	for _, c := range g.LegalMoves() {
		promos := []Kind{NoKind}
		if p, _ := g.board.PieceAt(c.From); p.Kind == Pawn && c.To.Rank() == p.Color.PromotionRank() {
			promos = []Kind{Queen, Rook, Bishop, Knight}
		}
		for _, promo := range promos {
			cp, err := Restore(snap)
			if err != nil {
				t.Fatalf("Restore: %v", err)
			}
			out, err := cp.Move(c.From, c.To, promo)
			if err != nil {
				t.Fatalf("legal move %s%s rejected: %v", c.From, c.To, err)
			}
			uci = append(uci, out.Move.UCI())
			san = append(san, out.Move.Notation())
		}
	}
	sort.Strings(uci)
	sort.Strings(san)
	return uci, san
}

func TestLegalMovesMatchReference(t *testing.T) {
	for _, fen := range oraclePositions {
		t.Run(fen, func(t *testing.T) {
			g := mustGame(t, fen)
			wantUCI, wantSAN := referenceMoves(t, fen)
			gotUCI, gotSAN := ourMoves(t, g)
			if diff := cmp.Diff(wantUCI, gotUCI); diff != "" {
				t.Errorf("legal moves differ (-notnil +ours):\n%s", diff)
			}
			if diff := cmp.Diff(wantSAN, gotSAN); diff != "" {
				t.Errorf("SAN differs (-notnil +ours):\n%s", diff)
			}
		})
	}
}

func TestFENMatchesReferenceAfterMoves(t *testing.T) {
	moves := []string{"e2e4", "c7c5", "g1f3", "d7d6", "f1b5", "c8d7", "e1g1", "g8f6"}

	ref := notnil.NewGame(notnil.UseNotation(notnil.UCINotation{}))
	g := NewGame()
	for _, mv := range moves {
		if err := ref.MoveStr(mv); err != nil {
			t.Fatalf("notnil move %s: %v", mv, err)
		}
		play(t, g, mv)
		// The two sides disagree on when to record an en passant square,
		// so compare the placement, side, castling and clocks.
		want := fenWithoutEnPassant(ref.Position().String())
		got := fenWithoutEnPassant(g.FEN())
		if want != got {
			t.Errorf("after %s: expected %s, got %s", mv, want, got)
		}
	}
}

func fenWithoutEnPassant(fen string) string {
	g, err := NewGameFromFEN(fen)
	if err != nil {
		return fen
	}
	g.state.EnPassantTarget = nil
	return g.FEN()
}
