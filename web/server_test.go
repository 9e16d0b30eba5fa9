// SPDX-License-Identifier: GPL-2.0-or-later

package web

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kwark/mdl"
	"kwark/pack"
	"kwark/palette"
	"kwark/spr"
	"kwark/wad"
)

func emptyLevel() []byte {
	var b bytes.Buffer
	binary.Write(&b, binary.LittleEndian, int32(29))
	for i := 0; i < 15; i++ {
		binary.Write(&b, binary.LittleEndian, [2]int32{124, 0})
	}
	return b.Bytes()
}

// one triangle, one frame, 8x4 skin
func oneTriangle() []byte {
	var b bytes.Buffer
	w := func(v any) { binary.Write(&b, binary.LittleEndian, v) }
	w(mdl.Header{
		ID:            mdl.Magic,
		Version:       6,
		Scale:         [3]float32{1, 1, 1},
		SkinCount:     1,
		SkinWidth:     8,
		SkinHeight:    4,
		VerticeCount:  3,
		TriangleCount: 1,
		FrameCount:    1,
	})
	w(int32(0))
	w(make([]byte, 8*4))
	w(make([]int32, 3*3))
	w([4]int32{1, 0, 1, 2})
	w(int32(0))
	w(make([]byte, 4+4+16))
	w([]byte{0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0})
	return b.Bytes()
}

func oneFrameSprite() []byte {
	var b bytes.Buffer
	w := func(v any) { binary.Write(&b, binary.LittleEndian, v) }
	w(spr.Header{ID: spr.Magic, Version: 1, MaxWidth: 2, MaxHeight: 1, FrameCount: 1})
	w(int32(spr.SPR_SINGLE))
	w([4]int32{-1, 1, 2, 1})
	b.Write([]byte{1, 2})
	return b.Bytes()
}

// gfx.wad with a single 1x1 qpic "num_1"
func onePicWad() []byte {
	var b bytes.Buffer
	w := func(v any) { binary.Write(&b, binary.LittleEndian, v) }
	b.WriteString("WAD2")
	w([2]int32{1, 21})
	w([2]int32{1, 1})
	b.WriteByte(3)
	w([3]int32{12, 9, 9})
	b.Write([]byte{wad.TypQPic, 0, 0, 0})
	var name [16]byte
	copy(name[:], "NUM_1")
	b.Write(name[:])
	return b.Bytes()
}

func testServer(t *testing.T) *httptest.Server {
	names := []string{"maps/start.bsp", "maps/bad.bsp", "progs/tri.mdl", "progs/s.spr", "gfx.wad"}
	files := map[string][]byte{
		"maps/start.bsp": emptyLevel(),
		"maps/bad.bsp":   []byte("garbage"),
		"progs/tri.mdl":  oneTriangle(),
		"progs/s.spr":    oneFrameSprite(),
		"gfx.wad":        onePicWad(),
	}
	var b bytes.Buffer
	require.NoError(t, pack.Write(&b, names, files))
	p, err := pack.NewReader(bytes.NewReader(b.Bytes()), int64(b.Len()), "pak0.pak")
	require.NoError(t, err)
	ts := httptest.NewServer(NewServer(pack.NewSearch(p), &palette.Palette{}).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, ts *httptest.Server, path string) (int, []byte) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func TestEntries(t *testing.T) {
	ts := testServer(t)
	code, body := get(t, ts, "/entries")
	require.Equal(t, http.StatusOK, code)
	var names []string
	require.NoError(t, json.Unmarshal(body, &names))
	assert.Equal(t, []string{"gfx.wad", "maps/bad.bsp", "maps/start.bsp", "progs/s.spr", "progs/tri.mdl"}, names)
}

func TestManifest(t *testing.T) {
	ts := testServer(t)
	code, body := get(t, ts, "/manifest")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), "progs/tri.mdl")
}

func TestStatusCodes(t *testing.T) {
	ts := testServer(t)
	tests := []struct {
		path string
		code int
	}{
		{"/level/maps/missing.bsp/mesh.glb", http.StatusNotFound},
		{"/level/maps/bad.bsp/mesh.glb", http.StatusUnprocessableEntity},
		{"/level/maps/start.bsp/mesh.glb", http.StatusUnprocessableEntity},
		{"/level/maps/start.bsp/textures/0.png", http.StatusNotFound},
		{"/model/progs/tri.mdl/frame/3.glb", http.StatusNotFound},
		{"/model/progs/none.mdl/skin.png", http.StatusNotFound},
		{"/model/maps/bad.bsp/skin.png", http.StatusUnprocessableEntity},
		{"/sprite/progs/s.spr/frame/1.png", http.StatusNotFound},
		{"/sprite/progs/tri.mdl/frame/0.png", http.StatusUnprocessableEntity},
		{"/wad/gfx.wad/pic/missing.png", http.StatusNotFound},
		{"/wad/progs/s.spr/pic/num_1.png", http.StatusUnprocessableEntity},
		{"/nothing", http.StatusNotFound},
	}
	for _, tc := range tests {
		code, _ := get(t, ts, tc.path)
		assert.Equal(t, tc.code, code, tc.path)
	}
}

func TestModel(t *testing.T) {
	ts := testServer(t)
	code, body := get(t, ts, "/model/progs/tri.mdl/skin.png")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "\x89PNG", string(body[:4]))

	code, body = get(t, ts, "/model/progs/tri.mdl/frame/0.glb")
	require.Equal(t, http.StatusOK, code, string(body))
	assert.Equal(t, "glTF", string(body[:4]))
}

func TestPictures(t *testing.T) {
	ts := testServer(t)
	for _, path := range []string{"/sprite/progs/s.spr/frame/0.png", "/wad/gfx.wad/pic/NUM_1.png"} {
		code, body := get(t, ts, path)
		require.Equal(t, http.StatusOK, code, path)
		assert.Equal(t, "\x89PNG", string(body[:4]), path)
	}
}
