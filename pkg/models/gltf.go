package models

import (
	"encoding/binary"
	"fmt"
	"math"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/taigrr/decal/pkg/math3d"
)

// GLTFLoader loads GLTF/GLB files into Mesh format.
type GLTFLoader struct {
	// Options
	CalculateNormals bool
	SmoothNormals    bool
}

// Node is a mesh instance placed in the glTF scene hierarchy.
type Node struct {
	Name      string
	Mesh      *Mesh       // Shared between nodes instancing the same glTF mesh
	Transform math3d.Mat4 // Local-to-world, parents applied
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		CalculateNormals: true,
		SmoothNormals:    true,
	}
}

// LoadGLB loads a binary GLTF (.glb) file and flattens every mesh node into
// a single world-space mesh.
func LoadGLB(path string) (*Mesh, error) {
	nodes, err := NewGLTFLoader().LoadScene(path)
	if err != nil {
		return nil, err
	}

	mesh := NewMesh(filepath.Base(path))
	for _, n := range nodes {
		placed := n.Mesh.Clone()
		placed.Transform(n.Transform)
		mesh.Append(placed)
	}
	return mesh, nil
}

// LoadScene loads a GLTF or GLB file and returns every node that references a
// mesh, with the node hierarchy's transforms resolved to world space.
func (l *GLTFLoader) LoadScene(path string) ([]Node, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	meshes := make(map[int]*Mesh)
	meshFor := func(idx int) (*Mesh, error) {
		if m, ok := meshes[idx]; ok {
			return m, nil
		}
		if idx < 0 || idx >= len(doc.Meshes) {
			return nil, fmt.Errorf("mesh index %d out of range", idx)
		}
		m, err := l.buildMesh(doc, doc.Meshes[idx])
		if err != nil {
			return nil, err
		}
		meshes[idx] = m
		return m, nil
	}

	var nodes []Node
	var visit func(idx int, parent math3d.Mat4, depth int) error
	visit = func(idx int, parent math3d.Mat4, depth int) error {
		if idx < 0 || idx >= len(doc.Nodes) {
			return fmt.Errorf("node index %d out of range", idx)
		}
		if depth > len(doc.Nodes) {
			return fmt.Errorf("node hierarchy has a cycle at node %d", idx)
		}
		n := doc.Nodes[idx]
		world := parent.Mul(nodeMatrix(n))

		if n.Mesh != nil {
			m, err := meshFor(*n.Mesh)
			if err != nil {
				return fmt.Errorf("node %q: %w", n.Name, err)
			}
			name := n.Name
			if name == "" {
				name = fmt.Sprintf("node%d", idx)
			}
			nodes = append(nodes, Node{Name: name, Mesh: m, Transform: world})
		}

		for _, child := range n.Children {
			if err := visit(child, world, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	for _, root := range sceneRoots(doc) {
		if err := visit(root, math3d.Identity(), 0); err != nil {
			return nil, err
		}
	}

	return nodes, nil
}

// sceneRoots returns the root nodes of the default scene. Documents without
// scenes fall back to every node that is nobody's child.
func sceneRoots(doc *gltf.Document) []int {
	if len(doc.Scenes) > 0 {
		idx := 0
		if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
			idx = *doc.Scene
		}
		return doc.Scenes[idx].Nodes
	}

	isChild := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(isChild) {
				isChild[c] = true
			}
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !isChild[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

// nodeMatrix returns the node's local matrix. An explicit matrix wins over
// TRS; zero-valued TRS fields mean "default" as written by most exporters.
func nodeMatrix(n *gltf.Node) math3d.Mat4 {
	if n.Matrix != ([16]float64{}) && n.Matrix != identityColumns {
		return math3d.FromColumns(n.Matrix)
	}

	t := math3d.NewTransform()
	t.Position = math3d.V3(n.Translation[0], n.Translation[1], n.Translation[2])
	if n.Rotation != ([4]float64{}) {
		t.Rotation = math3d.Quat{X: n.Rotation[0], Y: n.Rotation[1], Z: n.Rotation[2], W: n.Rotation[3]}
	}
	if n.Scale != ([3]float64{}) {
		t.Scale = math3d.V3(n.Scale[0], n.Scale[1], n.Scale[2])
	}
	return t.Matrix()
}

var identityColumns = [16]float64(math3d.Identity())

// buildMesh converts one glTF mesh (all triangle primitives) to a Mesh.
func (l *GLTFLoader) buildMesh(doc *gltf.Document, m *gltf.Mesh) (*Mesh, error) {
	mesh := NewMesh(m.Name)
	if err := l.processMesh(doc, m, mesh); err != nil {
		return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
	}

	hasNormals := false
	for _, v := range mesh.Vertices {
		if v.Normal.Len() > 0.001 {
			hasNormals = true
			break
		}
	}

	if l.CalculateNormals && !hasNormals {
		mesh.CalculateNormals(l.SmoothNormals)
	}

	mesh.CalculateBounds()
	return mesh, nil
}

// processMesh extracts geometry from a GLTF mesh.
// glTF winding (counter-clockwise front faces) is preserved.
func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// Skip non-triangle primitives (lines, points, etc)
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		positions, err := readVec3Accessor(doc, posIdx)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var normals []math3d.Vec3
		if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
			normals, err = readVec3Accessor(doc, normIdx)
			if err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
		}

		var uvs []math3d.Vec2
		if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			uvs, err = readVec2Accessor(doc, uvIdx)
			if err != nil {
				return fmt.Errorf("read uvs: %w", err)
			}
		}

		baseVertex := len(mesh.Vertices)
		for i := range positions {
			v := MeshVertex{Position: positions[i]}
			if i < len(normals) {
				v.Normal = normals[i]
			}
			if i < len(uvs) {
				// GLTF uses top-left origin (V=0 at top), flip V for bottom-left origin
				v.UV = math3d.V2(uvs[i].X, 1.0-uvs[i].Y)
			}
			mesh.Vertices = append(mesh.Vertices, v)
		}

		var indices []int
		if prim.Indices != nil {
			indices, err = readIndices(doc, *prim.Indices)
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		for i := 0; i+2 < len(indices); i += 3 {
			a, b, c := indices[i], indices[i+1], indices[i+2]
			if a >= len(positions) || b >= len(positions) || c >= len(positions) {
				return fmt.Errorf("index out of range in triangle %d", i/3)
			}
			mesh.Faces = append(mesh.Faces, Face{
				V:        [3]int{baseVertex + a, baseVertex + b, baseVertex + c},
				Material: -1,
			})
		}
	}

	return nil
}

// readVec3Accessor reads Vec3 data from a GLTF accessor.
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	accessor, err := accessorAt(doc, accessorIdx)
	if err != nil {
		return nil, err
	}
	if accessor.Type != gltf.AccessorVec3 {
		return nil, fmt.Errorf("expected VEC3, got %v", accessor.Type)
	}

	floats, err := readFloats(doc, accessor, 3)
	if err != nil {
		return nil, err
	}

	result := make([]math3d.Vec3, accessor.Count)
	for i := range result {
		result[i] = math3d.V3(floats[i*3], floats[i*3+1], floats[i*3+2])
	}
	return result, nil
}

// readVec2Accessor reads Vec2 data from a GLTF accessor.
func readVec2Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec2, error) {
	accessor, err := accessorAt(doc, accessorIdx)
	if err != nil {
		return nil, err
	}
	if accessor.Type != gltf.AccessorVec2 {
		return nil, fmt.Errorf("expected VEC2, got %v", accessor.Type)
	}

	floats, err := readFloats(doc, accessor, 2)
	if err != nil {
		return nil, err
	}

	result := make([]math3d.Vec2, accessor.Count)
	for i := range result {
		result[i] = math3d.V2(floats[i*2], floats[i*2+1])
	}
	return result, nil
}

// readIndices reads index data from a GLTF accessor.
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	accessor, err := accessorAt(doc, accessorIdx)
	if err != nil {
		return nil, err
	}
	if accessor.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("expected SCALAR indices, got %v", accessor.Type)
	}

	var size int
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("unexpected index type: %v", accessor.ComponentType)
	}

	data, start, stride, err := accessorBytes(doc, accessor, size)
	if err != nil {
		return nil, err
	}

	result := make([]int, accessor.Count)
	for i := range result {
		off := start + i*stride
		switch size {
		case 1:
			result[i] = int(data[off])
		case 2:
			result[i] = int(binary.LittleEndian.Uint16(data[off:]))
		case 4:
			result[i] = int(binary.LittleEndian.Uint32(data[off:]))
		}
	}
	return result, nil
}

func accessorAt(doc *gltf.Document, idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", idx)
	}
	return doc.Accessors[idx], nil
}

// readFloats reads count*components little-endian float32 values.
func readFloats(doc *gltf.Document, accessor *gltf.Accessor, components int) ([]float64, error) {
	if accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("unsupported component type %v", accessor.ComponentType)
	}

	data, start, stride, err := accessorBytes(doc, accessor, components*4)
	if err != nil {
		return nil, err
	}

	result := make([]float64, accessor.Count*components)
	for i := range accessor.Count {
		off := start + i*stride
		for j := range components {
			bits := binary.LittleEndian.Uint32(data[off+j*4:])
			result[i*components+j] = float64(math.Float32frombits(bits))
		}
	}
	return result, nil
}

// accessorBytes resolves the buffer backing an accessor and validates that
// every element of elemSize bytes lies inside it.
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor, elemSize int) (data []byte, start, stride int, err error) {
	if accessor.BufferView == nil {
		return nil, 0, 0, fmt.Errorf("accessor has no buffer view")
	}
	if *accessor.BufferView >= len(doc.BufferViews) {
		return nil, 0, 0, fmt.Errorf("buffer view %d out of range", *accessor.BufferView)
	}

	bufferView := doc.BufferViews[*accessor.BufferView]
	if bufferView.Buffer >= len(doc.Buffers) {
		return nil, 0, 0, fmt.Errorf("buffer %d out of range", bufferView.Buffer)
	}
	buffer := doc.Buffers[bufferView.Buffer]

	// gltf.Open resolves external and data-URI buffers into Data
	if buffer.Data == nil {
		return nil, 0, 0, fmt.Errorf("buffer has no data")
	}

	start = bufferView.ByteOffset + accessor.ByteOffset
	stride = bufferView.ByteStride
	if stride == 0 {
		stride = elemSize
	}

	if accessor.Count > 0 {
		end := start + (accessor.Count-1)*stride + elemSize
		if end > len(buffer.Data) {
			return nil, 0, 0, fmt.Errorf("accessor reads past end of buffer (%d > %d)", end, len(buffer.Data))
		}
	}

	return buffer.Data, start, stride, nil
}
