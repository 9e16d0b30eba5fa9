// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

// On-disk layout of a version 29 level.

const bspVersion = 29

// called lump_t in c
type directory struct {
	Offset int32
	Size   int32
}

type header struct {
	Version      int32
	Entities     directory
	Planes       directory
	Textures     directory
	Vertexes     directory
	Visibility   directory
	Nodes        directory
	Texinfo      directory
	Faces        directory
	Lighting     directory
	ClipNodes    directory
	Leafs        directory
	MarkSurfaces directory
	Edges        directory
	SurfaceEdges directory // SURFEDGES
	Models       directory
}

// dmodel, either a big zone, the level or parts inside that zone
type dmodel struct { // dmodel_t
	BoundingBox  [6]float32
	Origin       [3]float32
	HeadNode     [4]int32
	VisLeafCount int32 // not including the solid leaf 0
	FirstFace    int32
	FaceCount    int32
}

type vertex struct {
	X float32
	Y float32
	Z float32
}

// the first edge of the list is never used
type edgeV0 struct {
	Vertex0 uint16 // id of start vertex, must be in [0,numvertices[
	Vertex1 uint16 // id of end vertex, must be in [0,numvertices[
}

type surface struct {
	VectorS   [3]float32 // S vector, horizontal in texture space
	DistS     float32    // horizontal offset in texture space
	VectorT   [3]float32 // T vector, vertical in texture space
	DistT     float32    // vertical offset in texture space
	TextureID uint32     // Index of mip texture, must be in [0,numtex[
	Animated  uint32     // 0 for ordinary textures, 1 for water
}

type faceV0 struct {
	PlaneID        int16 // The plane in which the face lies, must be in [0,numplanes[
	Side           int16
	ListEdgeID     int32
	ListEdgeNumber int16
	TexInfoID      int16
	LightStyle     [4]uint8 // type, base light, two light models
	LightMap       int32    // Pointer inside the general light map, or -1. this defines the start of the face light map
}

type plane struct {
	Normal   [3]float32
	Distance float32
	Type     int32 // 0: axial plane in X, 1: axial plane in Y, 2 axial in Z, 3,4,5 similar but non axial
}
