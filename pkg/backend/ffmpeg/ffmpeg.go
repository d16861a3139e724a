// Package ffmpeg decodes video files through libav and pushes frames out
// via the backend callback contract.
package ffmpeg

/*
#cgo pkg-config: libavformat libavcodec libavutil libswscale

#include <stdlib.h>
#include <stdio.h>
#include <libavformat/avformat.h>
#include <libavcodec/avcodec.h>
#include <libswscale/swscale.h>
#include <libavutil/log.h>

// Implemented in callbacks.go.
extern uint8_t* mdGoLock(void *opaque);
extern void mdGoUnlock(void *opaque);
extern void mdGoDisplay(void *opaque);

typedef struct {
    AVFormatContext *formatCtx;
    AVCodecContext  *codecCtx;
    AVFrame         *frame;
    struct SwsContext *swsCtx;
    int             videoStream;
} decoder_t;

static int md_open_input(const char *filename, decoder_t *d) {
    // Suppress non-critical warnings such as the colourspace-conversion notice.
    av_log_set_level(AV_LOG_ERROR);
    d->videoStream = -1;

    if (avformat_open_input(&d->formatCtx, filename, NULL, NULL) != 0) {
        fprintf(stderr, "Could not open input file '%s'\n", filename);
        return -1;
    }
    if (avformat_find_stream_info(d->formatCtx, NULL) < 0) {
        fprintf(stderr, "Could not find stream information\n");
        return -2;
    }

    for (unsigned int i = 0; i < d->formatCtx->nb_streams; i++) {
        if (d->formatCtx->streams[i]->codecpar->codec_type == AVMEDIA_TYPE_VIDEO) {
            d->videoStream = (int)i;
            break;
        }
    }
    if (d->videoStream == -1) {
        fprintf(stderr, "No video stream found\n");
        return -3;
    }

    AVCodecParameters *par = d->formatCtx->streams[d->videoStream]->codecpar;
    const AVCodec *codec = NULL;

    // Honour a VIDEO_DECODER override when it matches the stream's codec,
    // otherwise fall back to the default software decoder.
    const char *envDecoder = getenv("VIDEO_DECODER");
    if (envDecoder && envDecoder[0] != '\0') {
        codec = avcodec_find_decoder_by_name(envDecoder);
        if (codec && codec->id != par->codec_id) {
            fprintf(stderr, "VIDEO_DECODER '%s' does not match stream codec, ignoring\n", envDecoder);
            codec = NULL;
        }
    }
    if (!codec) {
        codec = avcodec_find_decoder(par->codec_id);
    }
    if (!codec) {
        fprintf(stderr, "No decoder for codec id %d\n", par->codec_id);
        return -4;
    }

    d->codecCtx = avcodec_alloc_context3(codec);
    if (!d->codecCtx) {
        return -5;
    }
    avcodec_parameters_to_context(d->codecCtx, par);
    d->codecCtx->thread_type = FF_THREAD_FRAME;
    d->codecCtx->thread_count = 0;
    if (avcodec_open2(d->codecCtx, codec, NULL) < 0) {
        fprintf(stderr, "Failed to open decoder: %s\n", codec->name);
        avcodec_free_context(&d->codecCtx);
        return -6;
    }

    d->frame = av_frame_alloc();
    d->swsCtx = sws_getContext(d->codecCtx->width, d->codecCtx->height, d->codecCtx->pix_fmt,
                               d->codecCtx->width, d->codecCtx->height, AV_PIX_FMT_BGRA,
                               SWS_BILINEAR, NULL, NULL, NULL);
    if (!d->swsCtx) {
        return -7;
    }
    return 0;
}

// Decode the next frame. When emit is nonzero the frame is converted into
// the buffer handed out by mdGoLock and the display callbacks fire.
// Returns 1 on success, 0 on EOF, negative on error.
static int md_decode_next(decoder_t *d, void *opaque, int stride, int emit) {
    AVPacket packet;
    int ret;

    while (av_read_frame(d->formatCtx, &packet) >= 0) {
        if (packet.stream_index != d->videoStream) {
            av_packet_unref(&packet);
            continue;
        }
        ret = avcodec_send_packet(d->codecCtx, &packet);
        if (ret < 0) {
            av_packet_unref(&packet);
            return -1;
        }
        ret = avcodec_receive_frame(d->codecCtx, d->frame);
        if (ret == AVERROR(EAGAIN) || ret == AVERROR_EOF) {
            av_packet_unref(&packet);
            continue; // need more data
        } else if (ret < 0) {
            av_packet_unref(&packet);
            return -2;
        }
        av_packet_unref(&packet);

        if (emit) {
            uint8_t *dst = mdGoLock(opaque);
            if (dst) {
                uint8_t *planes[4] = { dst, NULL, NULL, NULL };
                int strides[4] = { stride, 0, 0, 0 };
                sws_scale(d->swsCtx,
                          (const uint8_t * const*)d->frame->data,
                          d->frame->linesize,
                          0,
                          d->codecCtx->height,
                          planes,
                          strides);
                mdGoUnlock(opaque);
                mdGoDisplay(opaque);
            }
        }
        return 1;
    }
    return 0; // EOF
}

static int md_seek_start(decoder_t *d) {
    if (av_seek_frame(d->formatCtx, d->videoStream, 0, AVSEEK_FLAG_BACKWARD) < 0) {
        return -1;
    }
    avcodec_flush_buffers(d->codecCtx);
    return 0;
}

static void md_close_input(decoder_t *d) {
    if (!d) return;
    if (d->swsCtx) {
        sws_freeContext(d->swsCtx);
        d->swsCtx = NULL;
    }
    av_frame_free(&d->frame);
    avcodec_free_context(&d->codecCtx);
    if (d->formatCtx) {
        avformat_close_input(&d->formatCtx);
    }
}

static double md_fps(decoder_t *d) {
    if (!d || d->videoStream < 0) {
        return 0;
    }
    AVStream *st = d->formatCtx->streams[d->videoStream];
    AVRational r = av_guess_frame_rate(d->formatCtx, st, NULL);
    if (r.den == 0) {
        return 0;
    }
    return av_q2d(r);
}
*/
import "C"

import (
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"
	"unsafe"

	gopointer "github.com/mattn/go-pointer"

	"media-dock/pkg/backend"
)

// catch-up cap per tick, so a long stall decodes forward instead of
// bursting dozens of frames through the surface
const maxCatchUpSteps = 4

// Backend decodes a local video file with libav. Frames are converted to
// BGRA straight into the buffer the frame sink hands out, so there is no
// intermediate copy. One playback goroutine owns all decoder calls.
type Backend struct {
	cb backend.VideoCallbacks

	mu      sync.Mutex
	dec     C.decoder_t
	loaded  bool
	playing bool
	loop    bool
	rate    float64
	fps     float64
	stride  int

	// opaque is a go-pointer handle to this Backend, passed through C so
	// the exported callbacks can find their way back.
	opaque unsafe.Pointer

	// pinner holds the sink's buffer pinned between mdGoLock and mdGoUnlock.
	pinner runtime.Pinner
	locked []byte

	quit      chan struct{}
	loopDone  chan struct{}
	closeOnce sync.Once
}

// New creates an idle backend. Callbacks must be set before Load.
func New() *Backend {
	b := &Backend{
		rate: 1.0,
		loop: true,
	}
	b.opaque = gopointer.Save(b)
	return b
}

// SetVideoCallbacks installs the frame sink.
func (b *Backend) SetVideoCallbacks(cb backend.VideoCallbacks) {
	b.mu.Lock()
	b.cb = cb
	b.mu.Unlock()
}

// SetLoop enables or disables restarting from the first frame at EOF.
func (b *Backend) SetLoop(loop bool) {
	b.mu.Lock()
	b.loop = loop
	b.mu.Unlock()
}

// SetPlaybackRate updates the logical playback rate (currently best-effort).
func (b *Backend) SetPlaybackRate(rate float64) {
	if rate <= 0 {
		return
	}
	b.mu.Lock()
	b.rate = rate
	b.mu.Unlock()
}

// Load opens the given file and negotiates the frame format with the sink.
// A previously loaded file is closed first.
func (b *Backend) Load(path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cb.Format == nil || b.cb.Lock == nil || b.cb.Unlock == nil || b.cb.Display == nil {
		return fmt.Errorf("ffmpeg: callbacks not set before Load")
	}

	if b.loaded {
		C.md_close_input(&b.dec)
		b.dec = C.decoder_t{}
		b.loaded = false
	}

	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))
	if ret := C.md_open_input(cPath, &b.dec); ret != 0 {
		return fmt.Errorf("ffmpeg: open %s failed (code=%d)", path, int(ret))
	}

	width := uint32(b.dec.codecCtx.width)
	height := uint32(b.dec.codecCtx.height)
	stride, ok := b.cb.Format(width, height)
	if !ok {
		C.md_close_input(&b.dec)
		b.dec = C.decoder_t{}
		return fmt.Errorf("ffmpeg: sink rejected %dx%d frames", width, height)
	}
	b.stride = int(stride)

	b.fps = float64(C.md_fps(&b.dec))
	if b.fps <= 0 {
		b.fps = 30 // sensible default if not available
	}

	b.loaded = true
	b.playing = false
	log.Printf("ffmpeg: loaded %s (%dx%d @ %.1ffps)", path, width, height, b.fps)
	return nil
}

// Play starts or resumes playback.
func (b *Backend) Play() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.loaded {
		return fmt.Errorf("ffmpeg: no media loaded")
	}
	b.playing = true
	if b.quit == nil {
		b.quit = make(chan struct{})
		b.loopDone = make(chan struct{})
		go b.playLoop(b.quit, b.loopDone)
	}
	return nil
}

// Pause freezes playback at the current frame.
func (b *Backend) Pause() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.loaded {
		return fmt.Errorf("ffmpeg: no media loaded")
	}
	b.playing = false
	return nil
}

// Stop halts playback and rewinds. The last pushed frame stays with the sink.
func (b *Backend) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.loaded {
		return nil
	}
	b.playing = false
	if ret := C.md_seek_start(&b.dec); ret != 0 {
		return fmt.Errorf("ffmpeg: seek to start failed (code=%d)", int(ret))
	}
	return nil
}

// Close stops the playback goroutine and frees the decoder. Idempotent.
func (b *Backend) Close() error {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		quit, done := b.quit, b.loopDone
		b.quit = nil
		b.mu.Unlock()

		if quit != nil {
			close(quit)
			<-done
		}

		b.mu.Lock()
		if b.loaded {
			C.md_close_input(&b.dec)
			b.loaded = false
		}
		b.mu.Unlock()

		gopointer.Unref(b.opaque)
	})
	return nil
}

// playLoop paces decoding against the wall clock. The fractional-frame
// accumulator absorbs jitter in sleep granularity.
func (b *Backend) playLoop(quit, done chan struct{}) {
	defer close(done)

	last := time.Now()
	var acc float64

	for {
		select {
		case <-quit:
			return
		default:
		}

		b.mu.Lock()
		playing, rate, fps := b.playing, b.rate, b.fps
		b.mu.Unlock()

		if !playing {
			time.Sleep(10 * time.Millisecond)
			last = time.Now()
			acc = 0
			continue
		}

		now := time.Now()
		acc += now.Sub(last).Seconds() * rate * fps
		last = now

		steps := int(acc)
		if steps == 0 {
			time.Sleep(2 * time.Millisecond)
			continue
		}
		acc -= float64(steps)
		if steps > maxCatchUpSteps {
			steps = maxCatchUpSteps
			acc = 0
		}

		b.mu.Lock()
		if !b.loaded || !b.playing {
			b.mu.Unlock()
			continue
		}
		for i := 0; i < steps; i++ {
			emit := C.int(0)
			if i == steps-1 {
				emit = 1
			}
			ret := C.md_decode_next(&b.dec, b.opaque, C.int(b.stride), emit)
			if ret == 0 {
				if b.loop && C.md_seek_start(&b.dec) == 0 {
					continue
				}
				b.playing = false
				break
			}
			if ret < 0 {
				log.Printf("ffmpeg: decode error (code=%d), stopping playback", int(ret))
				b.playing = false
				break
			}
		}
		b.mu.Unlock()
	}
}
