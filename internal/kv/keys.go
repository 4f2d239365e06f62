package kv

import "github.com/coredb/coredb/internal/model"

// Key prefixes for the badger-backed physical store. One extra prefix
// (edgeByType) beyond the teacher's four-index scheme, since the graph
// view needs to answer "all edges of this type" directly rather than by
// scanning every node's adjacency.
const (
	prefixNode       = byte(0x01) // node:id -> CRC32 || JSON(Node)
	prefixEdge       = byte(0x02) // edge:id -> CRC32 || JSON(Edge)
	prefixNodeByType = byte(0x03) // nodeByType:type\x00id -> {}
	prefixEdgeFrom   = byte(0x04) // edgeFrom:fromID\x00edgeID -> {}
	prefixEdgeTo     = byte(0x05) // edgeTo:toID\x00edgeID -> {}
	prefixEdgeByType = byte(0x06) // edgeByType:type\x00edgeID -> {}
	prefixMetadata   = byte(0x07) // metadata:key -> value
)

func nodeKey(id model.NodeID) []byte {
	return append([]byte{prefixNode}, id[:]...)
}

func edgeKey(id model.EdgeID) []byte {
	return append([]byte{prefixEdge}, id[:]...)
}

func nodeByTypeKey(nodeType string, id model.NodeID) []byte {
	k := append([]byte{prefixNodeByType}, []byte(nodeType)...)
	k = append(k, 0x00)
	return append(k, id[:]...)
}

func nodeByTypePrefix(nodeType string) []byte {
	k := append([]byte{prefixNodeByType}, []byte(nodeType)...)
	return append(k, 0x00)
}

func edgeFromKey(from model.NodeID, id model.EdgeID) []byte {
	k := append([]byte{prefixEdgeFrom}, from[:]...)
	k = append(k, 0x00)
	return append(k, id[:]...)
}

func edgeFromPrefix(from model.NodeID) []byte {
	k := append([]byte{prefixEdgeFrom}, from[:]...)
	return append(k, 0x00)
}

func edgeToKey(to model.NodeID, id model.EdgeID) []byte {
	k := append([]byte{prefixEdgeTo}, to[:]...)
	k = append(k, 0x00)
	return append(k, id[:]...)
}

func edgeToPrefix(to model.NodeID) []byte {
	k := append([]byte{prefixEdgeTo}, to[:]...)
	return append(k, 0x00)
}

func edgeByTypeKey(edgeType string, id model.EdgeID) []byte {
	k := append([]byte{prefixEdgeByType}, []byte(edgeType)...)
	k = append(k, 0x00)
	return append(k, id[:]...)
}

func edgeByTypePrefix(edgeType string) []byte {
	k := append([]byte{prefixEdgeByType}, []byte(edgeType)...)
	return append(k, 0x00)
}

func metadataKey(name string) []byte {
	return append([]byte{prefixMetadata}, []byte(name)...)
}

// trailingEdgeID extracts the 16-byte EdgeID suffix of an index key.
func trailingEdgeID(key []byte) model.EdgeID {
	var id model.EdgeID
	copy(id[:], key[len(key)-16:])
	return id
}

// trailingNodeID extracts the 16-byte NodeID suffix of an index key.
func trailingNodeID(key []byte) model.NodeID {
	var id model.NodeID
	copy(id[:], key[len(key)-16:])
	return id
}
