// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package httpkafka

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

const (
	// SuccessBody is written for every accepted POST, whether or not a
	// record was produced. It does not mean the broker has the message.
	SuccessBody = `{"msg":"SUCCESS","code":0}` + "\n"

	// TooLargeBody is written with 413 when the body cannot be produced
	// because of its size.
	TooLargeBody = `{"msg":"BODY TOO LARGE","code":1}` + "\n"

	responseContentType = "text/plain; charset=utf-8"
)

// Handler turns POST requests on one route into Kafka records.
//
// The response is written as soon as the record is handed to the client,
// before the broker has seen it. Delivery is at most once; failures only
// show up in delivery reports.
type Handler struct {
	// Route is the route served. Required.
	Route *Route

	// Producer supplies the Kafka client. Required. It must be started
	// before requests arrive.
	Producer *Producer

	// BodyChunkSize is the size of the pieces the body is read in.
	// Default: DefaultBodyChunkSize.
	BodyChunkSize int

	// MaxMemoryBody is how much of a body is kept in memory. Larger
	// bodies are spilled to a temporary file and rejected with 413.
	// Default: DefaultMaxMemoryBody.
	MaxMemoryBody int

	// MaxBodySize stops reading bodies larger than this and answers 413.
	// Default: twice MaxMemoryBody. Negative means no limit besides
	// MaxMemoryBody, past which at most one more chunk is read.
	MaxBodySize int64

	// TempDir is where spilled bodies go. Default: os.TempDir().
	TempDir string
}

var _ http.Handler = (*Handler)(nil)

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	event := IngestEvent{
		Route: h.Route,
		Topic: h.Route.Topic,
	}
	defer h.Producer.dispatchIngest(&event, start)

	if !h.Producer.Started() {
		h.fail(w, &event, http.StatusServiceUnavailable, ErrNotStarted)
		return
	}

	if r.Body == nil {
		h.fail(w, &event, http.StatusInternalServerError, ErrBodyUnreadable)
		return
	}

	src := r.Body
	if limit := h.maxBodySize(); limit > 0 {
		src = http.MaxBytesReader(w, src, limit)
	}

	b, err := readBody(src, h.BodyChunkSize, h.MaxMemoryBody, h.TempDir)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.reject(w, &event, errors.Join(ErrBodyTooLarge,
				fmt.Errorf("body exceeds %d bytes", tooLarge.Limit)))
			return
		}
		if r.Context().Err() != nil {
			event.Outcome = Abandoned
			event.Error = errors.Join(ErrBodyUnreadable, r.Context().Err())
			return
		}
		h.fail(w, &event, http.StatusInternalServerError, errors.Join(ErrBodyUnreadable, err))
		return
	}
	defer b.release()

	if err := r.Context().Err(); err != nil {
		event.Outcome = Abandoned
		event.Error = err
		return
	}

	msg, err := Aggregate(b.segs)
	if err != nil {
		logAt(h.logger(), kgo.LogLevelWarn, "request body not produced",
			"route", h.Route.Path, "topic", h.Route.Topic, "error", err.Error())
		h.reject(w, &event, err)
		return
	}
	event.Bytes = len(msg.Value)

	if len(msg.Value) == 0 {
		event.Outcome = Empty
		h.succeed(w, &event)
		return
	}
	msg.ContentType = r.Header.Get("Content-Type")

	topic, err := h.Route.GetOrCreateTopic(h.Producer)
	if err != nil {
		h.fail(w, &event, statusFor(err), err)
		return
	}

	if err := topic.Produce(r.Context(), msg, h.Route); err != nil {
		h.fail(w, &event, statusFor(err), err)
		return
	}

	event.Outcome = Queued
	h.succeed(w, &event)
}

// succeed writes the success payload, pushes it to the client and then
// dispatches the delivery reports completed so far.
func (h *Handler) succeed(w http.ResponseWriter, event *IngestEvent) {
	h.write(w, event, http.StatusOK, SuccessBody)
	_ = http.NewResponseController(w).Flush()
	h.Producer.Poll()
}

func (h *Handler) reject(w http.ResponseWriter, event *IngestEvent, err error) {
	event.Outcome = Rejected
	event.Error = err
	h.write(w, event, http.StatusRequestEntityTooLarge, TooLargeBody)
}

func (h *Handler) fail(w http.ResponseWriter, event *IngestEvent, status int, err error) {
	event.Outcome = Failed
	event.Error = err
	event.Status = status
	http.Error(w, http.StatusText(status), status)
}

func (h *Handler) write(w http.ResponseWriter, event *IngestEvent, status int, payload string) {
	event.Status = status
	w.Header().Set("Content-Type", responseContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
	w.WriteHeader(status)
	_, _ = w.Write([]byte(payload))
}

func (h *Handler) maxBodySize() int64 {
	if h.MaxBodySize != 0 {
		return h.MaxBodySize
	}
	mem := h.MaxMemoryBody
	if mem <= 0 {
		mem = DefaultMaxMemoryBody
	}
	return 2 * int64(mem)
}

func (h *Handler) logger() kgo.Logger {
	if h.Route.Logger != nil {
		return h.Route.Logger
	}
	return h.Producer.logger
}

// statusFor maps topic and produce errors to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotStarted), errors.Is(err, ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
