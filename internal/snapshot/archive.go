package snapshot

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ipfs/go-cid"
	"github.com/ipld/go-car"
	carutil "github.com/ipld/go-car/util"

	"github.com/justinabrahms/chess3d/internal/chess"
)

// ArchiveContentType is the media type of a CAR archive.
const ArchiveContentType = "application/vnd.ipld.car"

const archiveType = "chess3d.archive"

var (
	ErrNoRoot        = errors.New("archive has no single root")
	ErrMissingBlock  = errors.New("archive is missing a linked block")
	ErrBlockMismatch = errors.New("block does not match its CID")
)

// Archive is the decoded root record of a game archive.
type Archive struct {
	Root     cid.Cid
	FEN      string
	Status   chess.GameStatus
	Moves    []string
	Snapshot chess.Snapshot
}

// WriteArchive writes a CARv1 file whose root block indexes the game (FEN,
// status, SAN move list) and links to the snapshot block.
func WriteArchive(w io.Writer, g *chess.Game) (cid.Cid, error) {
	snapData, err := Encode(g.Snapshot())
	if err != nil {
		return cid.Undef, err
	}
	snapCID, err := Sum(snapData)
	if err != nil {
		return cid.Undef, err
	}

	moves := []interface{}{}
	for _, m := range g.History() {
		moves = append(moves, m.Notation())
	}
	root, err := buildNode(map[string]interface{}{
		"type":     archiveType,
		"fen":      g.FEN(),
		"status":   string(g.Status()),
		"moves":    moves,
		"snapshot": snapCID,
	})
	if err != nil {
		return cid.Undef, err
	}
	rootData, err := encodeNode(root)
	if err != nil {
		return cid.Undef, err
	}
	rootCID, err := Sum(rootData)
	if err != nil {
		return cid.Undef, err
	}

	if err := car.WriteHeader(&car.CarHeader{Roots: []cid.Cid{rootCID}, Version: 1}, w); err != nil {
		return cid.Undef, fmt.Errorf("failed to write CAR header: %w", err)
	}
	for _, blk := range []struct {
		c    cid.Cid
		data []byte
	}{{rootCID, rootData}, {snapCID, snapData}} {
		if err := carutil.LdWrite(w, blk.c.Bytes(), blk.data); err != nil {
			return cid.Undef, fmt.Errorf("failed to write block: %w", err)
		}
	}
	return rootCID, nil
}

// ReadArchive reads an archive written by WriteArchive, verifying every block
// against its CID.
func ReadArchive(r io.Reader) (*Archive, error) {
	reader, err := car.NewCarReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create CAR reader: %w", err)
	}
	if len(reader.Header.Roots) != 1 {
		return nil, ErrNoRoot
	}

	blocks := map[cid.Cid][]byte{}
	for {
		block, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read block: %w", err)
		}
		sum, err := block.Cid().Prefix().Sum(block.RawData())
		if err != nil {
			return nil, err
		}
		if !sum.Equals(block.Cid()) {
			return nil, fmt.Errorf("%w: %s", ErrBlockMismatch, block.Cid())
		}
		blocks[block.Cid()] = block.RawData()
	}

	a := &Archive{Root: reader.Header.Roots[0]}
	rootData, ok := blocks[a.Root]
	if !ok {
		return nil, fmt.Errorf("%w: root %s", ErrMissingBlock, a.Root)
	}
	node, err := decodeNode(rootData)
	if err != nil {
		return nil, err
	}
	v, err := nodeToGo(node)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]interface{})
	if !ok || m["type"] != archiveType {
		return nil, fmt.Errorf("%w: root is not a game archive", chess.ErrInvalidSnapshot)
	}
	a.FEN, _ = m["fen"].(string)
	status, _ := m["status"].(string)
	a.Status = chess.GameStatus(status)
	if list, ok := m["moves"].([]interface{}); ok {
		for _, e := range list {
			if s, ok := e.(string); ok {
				a.Moves = append(a.Moves, s)
			}
		}
	}

	snapCID, ok := m["snapshot"].(cid.Cid)
	if !ok {
		return nil, fmt.Errorf("%w: root has no snapshot link", chess.ErrInvalidSnapshot)
	}
	snapData, ok := blocks[snapCID]
	if !ok {
		return nil, fmt.Errorf("%w: snapshot %s", ErrMissingBlock, snapCID)
	}
	if a.Snapshot, err = Decode(snapData); err != nil {
		return nil, err
	}
	return a, nil
}

// Game restores the archived game and checks it against the indexed FEN.
func (a *Archive) Game() (*chess.Game, error) {
	g, err := chess.Restore(a.Snapshot)
	if err != nil {
		return nil, err
	}
	if g.FEN() != a.FEN {
		return nil, fmt.Errorf("%w: snapshot is at %q, archive says %q", chess.ErrInvalidSnapshot, g.FEN(), a.FEN)
	}
	return g, nil
}

// ArchiveBytes is WriteArchive into memory.
func ArchiveBytes(g *chess.Game) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := WriteArchive(&buf, g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
