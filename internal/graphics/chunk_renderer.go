package graphics

import (
	_ "embed"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"blockworld/internal/meshing"
	"blockworld/internal/profiling"
	"blockworld/internal/registry"
	"blockworld/internal/world"
)

var (
	//go:embed shaders/chunk.vert
	chunkVertShader string
	//go:embed shaders/chunk.frag
	chunkFragShader string
)

type gpuMesh struct {
	vao, vbo, ebo uint32
	indexCount    int32
}

// ChunkRenderer uploads chunk meshes to the GPU and draws them. It serves
// as both the mesh backend and the draw sink of a streaming store, so all
// of its methods must run on the thread that owns the GL context.
type ChunkRenderer struct {
	shader      *Shader
	atlas       uint32
	chunkWidth  int
	chunkHeight int

	meshes map[*meshing.ChunkMesh]*gpuMesh

	viewProj mgl32.Mat4
	frustum  Frustum

	Wireframe bool

	// per-frame counters, reset by Begin
	Drawn  int
	Culled int
}

// NewChunkRenderer compiles the chunk shader and uploads the atlas for cat.
func NewChunkRenderer(cat *registry.Catalog, chunkWidth, chunkHeight int) (*ChunkRenderer, error) {
	shader, err := NewShader(chunkVertShader, chunkFragShader)
	if err != nil {
		return nil, fmt.Errorf("chunk shader: %w", err)
	}
	r := &ChunkRenderer{
		shader:      shader,
		atlas:       UploadTexture(BuildAtlas(cat, DefaultTileSize)),
		chunkWidth:  chunkWidth,
		chunkHeight: chunkHeight,
		meshes:      make(map[*meshing.ChunkMesh]*gpuMesh),
	}

	shader.Use()
	shader.SetInt("u_Atlas", 0)
	shader.SetFloat("u_AtlasTiles", registry.AtlasTiles)
	light := mgl32.Vec3{0.3, 1.0, 0.3}.Normalize()
	shader.SetVector3("u_LightDir", light.X(), light.Y(), light.Z())
	return r, nil
}

// Upload creates the vertex array for m.
func (r *ChunkRenderer) Upload(coord world.ChunkCoord, m *meshing.ChunkMesh) error {
	if m.Empty() {
		return nil
	}
	verts := m.Interleaved()
	g := &gpuMesh{indexCount: int32(m.IndexCount())}

	gl.GenVertexArrays(1, &g.vao)
	gl.GenBuffers(1, &g.vbo)
	gl.GenBuffers(1, &g.ebo)

	gl.BindVertexArray(g.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, gl.Ptr(verts), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, gl.Ptr(m.Indices), gl.STATIC_DRAW)

	stride := int32(meshing.VertexStride * 4)
	offset := 0
	for loc, size := range []int{meshing.PositionSize, meshing.NormalSize, meshing.TexCoordSize, meshing.TileSize} {
		gl.EnableVertexAttribArray(uint32(loc))
		gl.VertexAttribPointer(uint32(loc), int32(size), gl.FLOAT, false, stride, gl.PtrOffset(offset*4))
		offset += size
	}
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	if errCode := gl.GetError(); errCode != gl.NO_ERROR {
		deleteGPUMesh(g)
		return fmt.Errorf("upload chunk %v: gl error 0x%x", coord, errCode)
	}
	r.meshes[m] = g
	return nil
}

// Release frees the vertex array of m.
func (r *ChunkRenderer) Release(_ world.ChunkCoord, m *meshing.ChunkMesh) {
	if g, ok := r.meshes[m]; ok {
		deleteGPUMesh(g)
		delete(r.meshes, m)
	}
}

func deleteGPUMesh(g *gpuMesh) {
	gl.DeleteVertexArrays(1, &g.vao)
	gl.DeleteBuffers(1, &g.vbo)
	gl.DeleteBuffers(1, &g.ebo)
}

// Begin prepares a frame: binds the program and atlas, and computes the
// frustum used to cull chunks in DrawChunk.
func (r *ChunkRenderer) Begin(view, proj mgl32.Mat4) {
	r.viewProj = proj.Mul4(view)
	r.frustum = NewFrustum(r.viewProj)
	r.Drawn, r.Culled = 0, 0

	r.shader.Use()
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.atlas)
	if r.Wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
}

// DrawChunk draws one uploaded mesh translated to its chunk origin.
func (r *ChunkRenderer) DrawChunk(coord world.ChunkCoord, m *meshing.ChunkMesh) {
	defer profiling.Track("render.DrawChunk")()

	g, ok := r.meshes[m]
	if !ok {
		return
	}
	origin := coord.Origin(r.chunkWidth)
	extent := mgl32.Vec3{float32(r.chunkWidth), float32(r.chunkHeight), float32(r.chunkWidth)}
	if !r.frustum.ContainsBox(origin, origin.Add(extent)) {
		r.Culled++
		return
	}

	mvp := r.viewProj.Mul4(mgl32.Translate3D(origin.X(), origin.Y(), origin.Z()))
	r.shader.SetMatrix4("u_MVP", &mvp[0])
	gl.BindVertexArray(g.vao)
	gl.DrawElements(gl.TRIANGLES, g.indexCount, gl.UNSIGNED_INT, nil)
	r.Drawn++
}

// End unbinds the state set up by Begin.
func (r *ChunkRenderer) End() {
	gl.BindVertexArray(0)
	gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
}

// Resident returns the number of meshes currently on the GPU.
func (r *ChunkRenderer) Resident() int {
	return len(r.meshes)
}

// Dispose cleans up OpenGL resources
func (r *ChunkRenderer) Dispose() {
	for m, g := range r.meshes {
		deleteGPUMesh(g)
		delete(r.meshes, m)
	}
	if r.atlas != 0 {
		gl.DeleteTextures(1, &r.atlas)
		r.atlas = 0
	}
	r.shader.Delete()
}
