package models

import (
	"encoding/binary"
	"math"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/taigrr/decal/pkg/math3d"
)

func TestLoadGLBInvalidPath(t *testing.T) {
	_, err := LoadGLB("/nonexistent/path.glb")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestGLTFLoaderCreation(t *testing.T) {
	loader := NewGLTFLoader()
	if loader == nil {
		t.Fatal("NewGLTFLoader returned nil")
	}
	if !loader.CalculateNormals {
		t.Error("CalculateNormals should default to true")
	}
	if !loader.SmoothNormals {
		t.Error("SmoothNormals should default to true")
	}
}

// writeQuadGLB writes a GLB with one quad mesh instanced by a parent node
// (translated) and its child (scaled), and returns the path.
func writeQuadGLB(t *testing.T) string {
	t.Helper()

	positions := []float32{
		-0.5, -0.5, 0,
		0.5, -0.5, 0,
		0.5, 0.5, 0,
		-0.5, 0.5, 0,
	}
	indices := []uint16{0, 1, 2, 0, 2, 3}

	var data []byte
	for _, f := range positions {
		data = binary.LittleEndian.AppendUint32(data, math.Float32bits(f))
	}
	posLen := len(data)
	for _, i := range indices {
		data = binary.LittleEndian.AppendUint16(data, i)
	}
	for len(data)%4 != 0 {
		data = append(data, 0)
	}

	doc := &gltf.Document{
		Asset:   gltf.Asset{Version: "2.0"},
		Buffers: []*gltf.Buffer{{ByteLength: len(data), Data: data}},
		BufferViews: []*gltf.BufferView{
			{Buffer: 0, ByteOffset: 0, ByteLength: posLen},
			{Buffer: 0, ByteOffset: posLen, ByteLength: len(indices) * 2},
		},
		Accessors: []*gltf.Accessor{
			{BufferView: gltf.Index(0), ComponentType: gltf.ComponentFloat, Count: 4, Type: gltf.AccessorVec3},
			{BufferView: gltf.Index(1), ComponentType: gltf.ComponentUshort, Count: len(indices), Type: gltf.AccessorScalar},
		},
		Meshes: []*gltf.Mesh{{
			Name: "quad",
			Primitives: []*gltf.Primitive{{
				Attributes: map[string]int{gltf.POSITION: 0},
				Indices:    gltf.Index(1),
				Mode:       gltf.PrimitiveTriangles,
			}},
		}},
		Nodes: []*gltf.Node{
			{Name: "parent", Mesh: gltf.Index(0), Translation: [3]float64{0, 0, 5}, Children: []int{1}},
			{Name: "child", Mesh: gltf.Index(0), Scale: [3]float64{2, 2, 2}},
		},
		Scenes: []*gltf.Scene{{Nodes: []int{0}}},
		Scene:  gltf.Index(0),
	}

	path := filepath.Join(t.TempDir(), "quad.glb")
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatalf("save glb: %v", err)
	}
	return path
}

func TestLoadSceneHierarchy(t *testing.T) {
	path := writeQuadGLB(t)

	nodes, err := NewGLTFLoader().LoadScene(path)
	if err != nil {
		t.Fatalf("LoadScene: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("got %d nodes, want 2", len(nodes))
	}

	if nodes[0].Mesh != nodes[1].Mesh {
		t.Error("nodes instancing the same glTF mesh should share it")
	}
	if nodes[0].Mesh.TriangleCount() != 2 || nodes[0].Mesh.VertexCount() != 4 {
		t.Errorf("quad has %d triangles / %d vertices", nodes[0].Mesh.TriangleCount(), nodes[0].Mesh.VertexCount())
	}

	// Child inherits the parent's translation and applies its own scale
	corner := nodes[1].Transform.MulVec3(math3d.V3(0.5, 0.5, 0))
	if !corner.ApproxEqual(math3d.V3(1, 1, 5), 1e-6) {
		t.Errorf("child corner = %v, want (1, 1, 5)", corner)
	}

	// Normals were generated and face +Z for counter-clockwise winding
	n := nodes[0].Mesh.Vertices[0].Normal
	if !n.ApproxEqual(math3d.V3(0, 0, 1), 1e-6) {
		t.Errorf("generated normal = %v, want (0, 0, 1)", n)
	}
}

func TestLoadGLBFlattens(t *testing.T) {
	path := writeQuadGLB(t)

	mesh, err := LoadGLB(path)
	if err != nil {
		t.Fatalf("LoadGLB: %v", err)
	}
	if mesh.TriangleCount() != 4 {
		t.Errorf("got %d triangles, want 4", mesh.TriangleCount())
	}

	b := mesh.Bounds()
	if !b.Min.ApproxEqual(math3d.V3(-1, -1, 5), 1e-6) || !b.Max.ApproxEqual(math3d.V3(1, 1, 5), 1e-6) {
		t.Errorf("bounds = %v", b)
	}
}
