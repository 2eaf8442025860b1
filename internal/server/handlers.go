package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vovakirdan/chaosynth/internal/engine"
	"github.com/vovakirdan/chaosynth/internal/orchestrator"
	"github.com/vovakirdan/chaosynth/internal/storage"
)

// maxBody bounds request bodies.
const maxBody = 64 << 10

// DefaultMorph is the perturbation applied when a morph request has no amount.
const DefaultMorph = 1.0

// SpectrumBands is the number of bands reported by /spectrum.
const SpectrumBands = 16

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrUnknownTarget),
		errors.Is(err, storage.ErrPresetNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrPresetsUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, orchestrator.ErrInvalidParameter),
		errors.Is(err, orchestrator.ErrUnknownKind),
		errors.Is(err, storage.ErrInvalidPreset),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

var errBadRequest = errors.New("bad request")

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return nil
}

func (s *Server) target(w http.ResponseWriter, r *http.Request) (*orchestrator.Orchestrator, bool) {
	o, err := s.engine.Orchestrator(chi.URLParam(r, "target"))
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return o, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.engine.Status())
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	n := 0
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			s.writeError(w, fmt.Errorf("%w: n=%q", errBadRequest, v))
			return
		}
		n = parsed
	}
	s.writeJSON(w, http.StatusOK, s.engine.History(n))
}

type spectrumResponse struct {
	Bands  []float64 `json:"bands"`
	PeakHz float64   `json:"peak_hz"`
}

func (s *Server) handleSpectrum(w http.ResponseWriter, r *http.Request) {
	vis := s.engine.Visualizer()
	if !vis.Running() {
		vis.Update()
	}
	s.writeJSON(w, http.StatusOK, spectrumResponse{
		Bands:  vis.Bands(SpectrumBands),
		PeakHz: vis.PeakFrequency(),
	})
}

func (s *Server) handleTarget(w http.ResponseWriter, r *http.Request) {
	o, ok := s.target(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, o.Status())
}

type kindRequest struct {
	Kind string `json:"kind"`
}

func (s *Server) handleKind(w http.ResponseWriter, r *http.Request) {
	o, ok := s.target(w, r)
	if !ok {
		return
	}
	var req kindRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := o.SetKind(req.Kind); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, o.Status())
}

// handleParams applies a JSON object of parameter updates. Numbers go
// through UpdateParameter; "scale" and "model" also accept names. Valid
// updates are applied even when others fail.
func (s *Server) handleParams(w http.ResponseWriter, r *http.Request) {
	o, ok := s.target(w, r)
	if !ok {
		return
	}
	var body map[string]json.RawMessage
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, err)
		return
	}

	var errs []error
	for name, raw := range body {
		var num float64
		if err := json.Unmarshal(raw, &num); err == nil {
			errs = append(errs, o.UpdateParameter(name, num))
			continue
		}
		var str string
		if err := json.Unmarshal(raw, &str); err == nil {
			switch name {
			case orchestrator.ParamScale:
				errs = append(errs, o.SetScale(str))
				continue
			case orchestrator.ParamKind, "kind":
				errs = append(errs, o.SetKind(str))
				continue
			}
		}
		var flag bool
		if err := json.Unmarshal(raw, &flag); err == nil && name == orchestrator.ParamQuantize {
			v := 0.0
			if flag {
				v = 1
			}
			errs = append(errs, o.UpdateParameter(name, v))
			continue
		}
		errs = append(errs, fmt.Errorf("orchestrator: %s=%s: %w", name, raw, orchestrator.ErrInvalidParameter))
	}
	if err := errors.Join(errs...); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, o.Status())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	o, ok := s.target(w, r)
	if !ok {
		return
	}
	o.Reset()
	s.writeJSON(w, http.StatusOK, o.Status())
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	o, ok := s.target(w, r)
	if !ok {
		return
	}
	o.Start(s.engine.Scheduler())
	s.writeJSON(w, http.StatusOK, o.Status())
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	o, ok := s.target(w, r)
	if !ok {
		return
	}
	o.Stop()
	s.writeJSON(w, http.StatusOK, o.Status())
}

type morphRequest struct {
	Amount float64 `json:"amount"`
}

func (s *Server) handleMorph(w http.ResponseWriter, r *http.Request) {
	req := morphRequest{Amount: DefaultMorph}
	if r.ContentLength != 0 {
		if err := decodeBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
			s.writeError(w, err)
			return
		}
	}
	if req.Amount < 0 {
		s.writeError(w, fmt.Errorf("%w: negative amount", errBadRequest))
		return
	}
	s.engine.Chaos().Perturb(req.Amount)
	s.writeJSON(w, http.StatusOK, s.engine.Chaos().Status())
}

func (s *Server) handlePresetList(w http.ResponseWriter, r *http.Request) {
	infos, err := s.engine.PresetInfos()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handlePresetGet(w http.ResponseWriter, r *http.Request) {
	p, err := s.engine.GetPreset(chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

// handlePresetPut stores the request body as a preset, or the live settings
// when the body is empty.
func (s *Server) handlePresetPut(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var err error
	if r.ContentLength == 0 {
		err = s.engine.SavePreset(name)
	} else {
		var p engine.Preset
		if err = decodeBody(r, &p); err == nil {
			err = s.engine.PutPreset(name, p)
		}
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"saved": name})
}

func (s *Server) handlePresetDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.DeletePreset(chi.URLParam(r, "name")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePresetLoad(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.LoadPreset(chi.URLParam(r, "name")); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.engine.CurrentPreset())
}

type midiResponse struct {
	Handled int `json:"handled"`
}

// handleMIDI feeds raw MIDI bytes to the mapper.
func (s *Server) handleMIDI(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	n, err := s.engine.MIDI().HandleBytes(data)
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	s.writeJSON(w, http.StatusOK, midiResponse{Handled: n})
}
