// Package gst decodes video files through a GStreamer pipeline and pushes
// frames out via the backend callback contract. It is the fallback for
// formats the libav build on a device cannot handle.
package gst

import (
	"fmt"
	"log"
	"sync"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"

	"media-dock/pkg/backend"
)

// Backend drives a filesrc -> decodebin -> videoconvert -> capsfilter ->
// appsink pipeline. The capsfilter pins the appsink output to BGRA so the
// sample bytes can be copied straight into the sink's buffer.
type Backend struct {
	cb backend.VideoCallbacks

	mu       sync.Mutex
	pipeline *gst.Pipeline
	sink     *app.Sink
	loaded   bool
	loop     bool

	// negotiated geometry; re-negotiated whenever the caps change
	width  uint32
	height uint32
	stride uint32

	closeOnce sync.Once
}

// New creates an idle backend. Callbacks must be set before Load.
func New() *Backend {
	return &Backend{loop: true}
}

// SetVideoCallbacks installs the frame sink.
func (b *Backend) SetVideoCallbacks(cb backend.VideoCallbacks) {
	b.mu.Lock()
	b.cb = cb
	b.mu.Unlock()
}

// SetLoop enables or disables restarting from the first frame at EOS.
func (b *Backend) SetLoop(loop bool) {
	b.mu.Lock()
	b.loop = loop
	b.mu.Unlock()
}

// Load builds the pipeline for the given file. The pipeline is prerolled
// but not started; frame production begins with Play.
func (b *Backend) Load(source string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cb.Format == nil || b.cb.Lock == nil || b.cb.Unlock == nil || b.cb.Display == nil {
		return fmt.Errorf("gst: callbacks not set before Load")
	}

	if b.loaded {
		b.teardownLocked()
	}

	gst.Init(nil)

	pipeline, err := gst.NewPipeline("")
	if err != nil {
		return fmt.Errorf("gst: failed to create pipeline: %w", err)
	}

	filesrc, err := gst.NewElement("filesrc")
	if err != nil {
		return fmt.Errorf("gst: failed to create filesrc: %w", err)
	}
	filesrc.SetProperty("location", source)

	decodebin, err := gst.NewElement("decodebin")
	if err != nil {
		return fmt.Errorf("gst: failed to create decodebin: %w", err)
	}

	converter, err := gst.NewElement("videoconvert")
	if err != nil {
		return fmt.Errorf("gst: failed to create videoconvert: %w", err)
	}

	capsfilter, err := gst.NewElement("capsfilter")
	if err != nil {
		return fmt.Errorf("gst: failed to create capsfilter: %w", err)
	}
	capsfilter.SetProperty("caps", gst.NewCapsFromString("video/x-raw,format=BGRA"))

	appsink, err := app.NewAppSink()
	if err != nil {
		return fmt.Errorf("gst: failed to create appsink: %w", err)
	}
	appsink.SetProperty("sync", true)      // pace against the pipeline clock
	appsink.SetProperty("max-buffers", 1)  // keep only the latest frame
	appsink.SetProperty("drop", true)

	pipeline.AddMany(filesrc, decodebin, converter, capsfilter, appsink.Element)

	if err := filesrc.Link(decodebin); err != nil {
		return fmt.Errorf("gst: failed to link filesrc to decodebin: %w", err)
	}
	// decodebin exposes its pads only once the stream type is known, so the
	// link to videoconvert happens in the pad-added callback.
	if err := gst.ElementLinkMany(converter, capsfilter, appsink.Element); err != nil {
		return fmt.Errorf("gst: failed to link pipeline elements: %w", err)
	}

	decodebin.Connect("pad-added", func(self *gst.Element, srcPad *gst.Pad) {
		sinkPad := converter.GetStaticPad("sink")
		if sinkPad == nil {
			log.Printf("gst: videoconvert has no sink pad")
			return
		}
		if sinkPad.IsLinked() {
			return // ignore secondary streams such as audio
		}
		if ret := srcPad.Link(sinkPad); ret != gst.PadLinkOK {
			log.Printf("gst: failed to link decodebin pad %s (ret=%v)", srcPad.GetName(), ret)
		}
	})

	appsink.SetCallbacks(&app.SinkCallbacks{
		NewSampleFunc: b.onNewSample,
		EOSFunc:       b.onEOS,
	})

	// Preroll so the first frame is decoded and Load failures surface here
	// instead of on Play.
	if err := pipeline.SetState(gst.StatePaused); err != nil {
		pipeline.SetState(gst.StateNull)
		return fmt.Errorf("gst: failed to preroll %s: %w", source, err)
	}

	b.pipeline = pipeline
	b.sink = appsink
	b.loaded = true
	b.width, b.height, b.stride = 0, 0, 0
	log.Printf("gst: loaded %s", source)
	return nil
}

// Play starts or resumes playback.
func (b *Backend) Play() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.loaded {
		return fmt.Errorf("gst: no media loaded")
	}
	if err := b.pipeline.SetState(gst.StatePlaying); err != nil {
		return fmt.Errorf("gst: failed to start pipeline: %w", err)
	}
	return nil
}

// Pause freezes playback at the current frame.
func (b *Backend) Pause() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.loaded {
		return fmt.Errorf("gst: no media loaded")
	}
	if err := b.pipeline.SetState(gst.StatePaused); err != nil {
		return fmt.Errorf("gst: failed to pause pipeline: %w", err)
	}
	return nil
}

// Stop halts playback and rewinds to the start. The last delivered frame
// stays with the sink.
func (b *Backend) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.loaded {
		return nil
	}
	// Ready drops the pipeline position; the next Play prerolls from the
	// first frame again.
	if err := b.pipeline.SetState(gst.StateReady); err != nil {
		return fmt.Errorf("gst: failed to stop pipeline: %w", err)
	}
	return nil
}

// Close tears the pipeline down. Idempotent.
func (b *Backend) Close() error {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		b.teardownLocked()
		b.mu.Unlock()
	})
	return nil
}

func (b *Backend) teardownLocked() {
	if b.pipeline != nil {
		if err := b.pipeline.SetState(gst.StateNull); err != nil {
			log.Printf("gst: failed to set pipeline to NULL: %v", err)
		}
		b.pipeline = nil
		b.sink = nil
	}
	b.loaded = false
}

// onNewSample runs on a GStreamer streaming thread for every decoded frame.
// It must never panic; anything unexpected is logged and the frame skipped.
func (b *Backend) onNewSample(sink *app.Sink) gst.FlowReturn {
	sample := sink.PullSample()
	if sample == nil {
		log.Printf("gst: failed to pull sample, skipping frame")
		return gst.FlowOK
	}

	width, height, ok := sampleGeometry(sample)
	if !ok {
		log.Printf("gst: sample without video caps, skipping frame")
		return gst.FlowOK
	}

	b.mu.Lock()
	cb := b.cb
	if width != b.width || height != b.height {
		stride, ok := cb.Format(width, height)
		if !ok {
			b.mu.Unlock()
			log.Printf("gst: sink rejected %dx%d frames, stopping", width, height)
			return gst.FlowError
		}
		b.width, b.height, b.stride = width, height, stride
	}
	stride := b.stride
	b.mu.Unlock()

	if stride == 0 {
		return gst.FlowOK // sink is in its empty state
	}

	buffer := sample.GetBuffer()
	if buffer == nil {
		log.Printf("gst: sample without buffer, skipping frame")
		return gst.FlowOK
	}

	mapInfo := buffer.Map(gst.MapRead)
	data := mapInfo.Bytes()
	if len(data) == 0 {
		buffer.Unmap()
		log.Printf("gst: empty buffer received")
		return gst.FlowOK
	}

	dst := cb.Lock()
	if dst == nil {
		buffer.Unmap()
		return gst.FlowOK // no buffer available, skip this frame
	}
	n := len(data)
	if len(dst) < n {
		n = len(dst)
	}
	copy(dst[:n], data[:n])
	cb.Unlock()
	buffer.Unmap()

	cb.Display()
	return gst.FlowOK
}

// onEOS restarts the pipeline when looping is enabled.
func (b *Backend) onEOS(sink *app.Sink) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.loaded || !b.loop || b.pipeline == nil {
		return
	}
	if err := b.pipeline.SetState(gst.StateReady); err != nil {
		log.Printf("gst: loop rewind failed: %v", err)
		return
	}
	if err := b.pipeline.SetState(gst.StatePlaying); err != nil {
		log.Printf("gst: loop restart failed: %v", err)
	}
}

// sampleGeometry pulls width and height out of a sample's caps.
func sampleGeometry(sample *gst.Sample) (uint32, uint32, bool) {
	caps := sample.GetCaps()
	if caps == nil || caps.GetSize() == 0 {
		return 0, 0, false
	}
	structure := caps.GetStructureAt(0)
	if structure == nil {
		return 0, 0, false
	}

	var width, height int
	if val, err := structure.GetValue("width"); err == nil {
		if w, ok := val.(int); ok {
			width = w
		}
	}
	if val, err := structure.GetValue("height"); err == nil {
		if h, ok := val.(int); ok {
			height = h
		}
	}
	if width <= 0 || height <= 0 {
		return 0, 0, false
	}
	return uint32(width), uint32(height), true
}
