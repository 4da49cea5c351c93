package sound

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"testing"

	"github.com/gopxl/beep/v2"
)

// wavBytes builds a minimal valid mono 16-bit 44100 Hz WAV file with
// the given number of sample frames.
func wavBytes(t *testing.T, frames int) []byte {
	t.Helper()

	dataSize := frames * 2
	buf := make([]byte, 0, 44+dataSize)

	buf = append(buf, 'R', 'I', 'F', 'F')
	buf = binary.LittleEndian.AppendUint32(buf, uint32(36+dataSize))
	buf = append(buf, 'W', 'A', 'V', 'E')

	buf = append(buf, 'f', 'm', 't', ' ')
	buf = binary.LittleEndian.AppendUint32(buf, 16)
	buf = binary.LittleEndian.AppendUint16(buf, 1) // PCM
	buf = binary.LittleEndian.AppendUint16(buf, 1) // mono
	buf = binary.LittleEndian.AppendUint32(buf, 44100)
	buf = binary.LittleEndian.AppendUint32(buf, 88200)
	buf = binary.LittleEndian.AppendUint16(buf, 2)  // block align
	buf = binary.LittleEndian.AppendUint16(buf, 16) // bits per sample

	buf = append(buf, 'd', 'a', 't', 'a')
	buf = binary.LittleEndian.AppendUint32(buf, uint32(dataSize))
	for i := 0; i < frames; i++ {
		buf = binary.LittleEndian.AppendUint16(buf, 0x1000)
	}

	return buf
}

// fakeOutput records submitted streamers and drains them so
// completion callbacks fire.
type fakeOutput struct {
	mu        sync.Mutex
	initCalls int
	plays     int
}

func (o *fakeOutput) Init(beep.SampleRate, int) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.initCalls++
	return nil
}

func (o *fakeOutput) Play(streams ...beep.Streamer) {
	o.mu.Lock()
	o.plays += len(streams)
	o.mu.Unlock()

	for _, s := range streams {
		go func(s beep.Streamer) {
			samples := make([][2]float64, 512)
			for {
				if _, ok := s.Stream(samples); !ok {
					return
				}
			}
		}(s)
	}
}

func (o *fakeOutput) playCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.plays
}

// fakeFetcher serves canned bytes per URL and counts calls.
type fakeFetcher struct {
	mu    sync.Mutex
	data  map[string][]byte
	calls int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{data: make(map[string][]byte)}
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	data, ok := f.data[rawURL]
	if !ok {
		return nil, fmt.Errorf("fetch %s: not found", rawURL)
	}
	return data, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeResolver maps file IDs to URLs and counts lookups.
type fakeResolver struct {
	mu    sync.Mutex
	urls  map[string]string
	calls int
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{urls: make(map[string]string)}
}

func (r *fakeResolver) ResolveURL(_ context.Context, fileID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	u, ok := r.urls[fileID]
	if !ok {
		return "", fmt.Errorf("resolve %s: not found", fileID)
	}
	return u, nil
}

func (r *fakeResolver) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// stubCatalog maps bundled names straight to asset paths.
type stubCatalog map[string]string

func (c stubCatalog) Path(name string) (string, bool) {
	p, ok := c[name]
	return p, ok
}

// fakeSettings is a canned settings collaborator.
type fakeSettings struct {
	master         float64
	notUseSound    bool
	onlyWhenActive bool
	bindings       map[Event]Descriptor
}

func (s *fakeSettings) MasterVolume() float64 { return s.master }
func (s *fakeSettings) NotUseSound() bool     { return s.notUseSound }
func (s *fakeSettings) OnlyWhenActive() bool  { return s.onlyWhenActive }

func (s *fakeSettings) Binding(ev Event) Descriptor {
	if d, ok := s.bindings[ev]; ok {
		return d
	}
	return Descriptor{Type: TypeNone}
}
