// Package snapshot turns chess.Snapshot values into content-addressed
// DAG-CBOR blocks and bundles them into CAR archives.
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ipfs/go-cid"
	"github.com/ipld/go-ipld-prime"
	"github.com/ipld/go-ipld-prime/codec/dagcbor"
	cidlink "github.com/ipld/go-ipld-prime/linking/cid"
	"github.com/ipld/go-ipld-prime/node/basicnode"
	"github.com/multiformats/go-multihash"

	"github.com/justinabrahms/chess3d/internal/chess"
)

// ContentType is the media type of an encoded snapshot block.
const ContentType = "application/vnd.ipld.dag-cbor"

var blockPrefix = cid.Prefix{
	Version:  1,
	Codec:    cid.DagCBOR,
	MhType:   multihash.SHA2_256,
	MhLength: -1,
}

// Encode serializes a snapshot as a DAG-CBOR block. Map keys are written in
// canonical order, so equal snapshots encode to equal bytes.
func Encode(s chess.Snapshot) ([]byte, error) {
	v, err := toGeneric(s)
	if err != nil {
		return nil, err
	}
	node, err := buildNode(v)
	if err != nil {
		return nil, err
	}
	return encodeNode(node)
}

// Decode parses a DAG-CBOR block produced by Encode. The result is not
// validated; pass it to chess.Restore for that.
func Decode(data []byte) (chess.Snapshot, error) {
	var s chess.Snapshot
	node, err := decodeNode(data)
	if err != nil {
		return s, err
	}
	v, err := nodeToGo(node)
	if err != nil {
		return s, fmt.Errorf("%w: %v", chess.ErrInvalidSnapshot, err)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return s, fmt.Errorf("%w: %v", chess.ErrInvalidSnapshot, err)
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return s, fmt.Errorf("%w: %v", chess.ErrInvalidSnapshot, err)
	}
	return s, nil
}

// Sum returns the CIDv1 (dag-cbor, sha2-256) of an encoded block.
func Sum(data []byte) (cid.Cid, error) {
	return blockPrefix.Sum(data)
}

func encodeNode(node ipld.Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := dagcbor.Encode(node, &buf); err != nil {
		return nil, fmt.Errorf("failed to encode CBOR: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeNode(data []byte) (ipld.Node, error) {
	nb := basicnode.Prototype.Any.NewBuilder()
	if err := dagcbor.Decode(nb, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("%w: failed to decode CBOR: %v", chess.ErrInvalidSnapshot, err)
	}
	return nb.Build(), nil
}

// toGeneric reduces a value to maps, slices and scalars through its JSON form,
// keeping integers exact.
func toGeneric(v interface{}) (interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out interface{}
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func buildNode(v interface{}) (ipld.Node, error) {
	nb := basicnode.Prototype.Any.NewBuilder()
	if err := assemble(nb, v); err != nil {
		return nil, err
	}
	return nb.Build(), nil
}

func assemble(na ipld.NodeAssembler, v interface{}) error {
	switch v := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		ma, err := na.BeginMap(int64(len(v)))
		if err != nil {
			return err
		}
		for _, k := range keys {
			if err := ma.AssembleKey().AssignString(k); err != nil {
				return err
			}
			if err := assemble(ma.AssembleValue(), v[k]); err != nil {
				return err
			}
		}
		return ma.Finish()

	case []interface{}:
		la, err := na.BeginList(int64(len(v)))
		if err != nil {
			return err
		}
		for _, e := range v {
			if err := assemble(la.AssembleValue(), e); err != nil {
				return err
			}
		}
		return la.Finish()

	case json.Number:
		if i, err := v.Int64(); err == nil {
			return na.AssignInt(i)
		}
		f, err := v.Float64()
		if err != nil {
			return err
		}
		return na.AssignFloat(f)

	case cid.Cid:
		return na.AssignLink(cidlink.Link{Cid: v})

	case string:
		return na.AssignString(v)

	case bool:
		return na.AssignBool(v)

	case nil:
		return na.AssignNull()

	default:
		return fmt.Errorf("unsupported value type %T", v)
	}
}

func nodeToGo(node ipld.Node) (interface{}, error) {
	switch node.Kind() {
	case ipld.Kind_Map:
		m := make(map[string]interface{})
		iter := node.MapIterator()
		for !iter.Done() {
			k, v, err := iter.Next()
			if err != nil {
				return nil, err
			}
			keyStr, err := k.AsString()
			if err != nil {
				return nil, err
			}
			val, err := nodeToGo(v)
			if err != nil {
				return nil, err
			}
			m[keyStr] = val
		}
		return m, nil

	case ipld.Kind_List:
		list := []interface{}{}
		iter := node.ListIterator()
		for !iter.Done() {
			_, v, err := iter.Next()
			if err != nil {
				return nil, err
			}
			val, err := nodeToGo(v)
			if err != nil {
				return nil, err
			}
			list = append(list, val)
		}
		return list, nil

	case ipld.Kind_String:
		return node.AsString()

	case ipld.Kind_Int:
		return node.AsInt()

	case ipld.Kind_Float:
		return node.AsFloat()

	case ipld.Kind_Bool:
		return node.AsBool()

	case ipld.Kind_Null:
		return nil, nil

	case ipld.Kind_Link:
		lnk, err := node.AsLink()
		if err != nil {
			return nil, err
		}
		cl, ok := lnk.(cidlink.Link)
		if !ok {
			return nil, fmt.Errorf("unsupported link type %T", lnk)
		}
		return cl.Cid, nil

	default:
		return nil, fmt.Errorf("unsupported node kind: %v", node.Kind())
	}
}
