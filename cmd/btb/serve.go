package main

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/btb-suite/beatthebox/internal/box"
	"github.com/btb-suite/beatthebox/internal/config"
	"github.com/btb-suite/beatthebox/internal/deck"
	"github.com/btb-suite/beatthebox/internal/optimizer"
	"github.com/btb-suite/beatthebox/internal/session"
	"github.com/btb-suite/beatthebox/internal/sim"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the game, simulator and optimizer over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
}

type sessionResp struct {
	ID   int           `json:"id,omitempty"`
	View *session.View `json:"view,omitempty"`
	Last string        `json:"last_outcome,omitempty"`
	Err  string        `json:"err,omitempty"`
}

type probsResp struct {
	Position      int     `json:"position"`
	Higher        float64 `json:"higher"`
	Lower         float64 `json:"lower"`
	HigherOrEqual float64 `json:"higher_equal"`
	LowerOrEqual  float64 `json:"lower_equal"`
	ExactMatch    float64 `json:"exact_match"`
	Err           string  `json:"err,omitempty"`
}

var (
	sessions  = map[int]*session.Session{}
	nextID    = 1
	serveLock sync.Mutex

	serveLoader *config.Loader
)

func parseFloatParam(r *http.Request, key string) (float64, bool, string) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, false, ""
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, "invalid " + key
	}
	return v, true, ""
}

func parseIntParam(r *http.Request, key string) (int, bool, string) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, false, ""
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, "invalid " + key
	}
	return v, true, ""
}

func parseUintParam(r *http.Request, key string) (uint64, bool, string) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, false, ""
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false, "invalid " + key
	}
	return v, true, ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// baseGame resolves the server's game config (preset-merged) so query
// params only need to override what differs.
func baseGame() (session.Config, error) {
	if serveLoader == nil {
		return config.GameSession(config.RawConfig{})
	}
	raw, err := serveLoader.LoadMerged(flagPreset)
	if err != nil {
		return session.Config{}, err
	}
	return config.GameSession(raw)
}

func handleNewSession(w http.ResponseWriter, r *http.Request) {
	cfg, err := baseGame()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, sessionResp{Err: err.Error()})
		return
	}
	if v, ok, msg := parseIntParam(r, "jokers"); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	} else if ok {
		cfg.Jokers = v
	}
	if v, ok, msg := parseIntParam(r, "budget"); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	} else if ok {
		cfg.InclusiveBudget = v
	}
	if v, ok, msg := parseFloatParam(r, "threshold"); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	} else if ok {
		cfg.Threshold = v
	}
	if r.URL.Query().Get("show_failed") == "true" {
		cfg.FailedCardVisible = true
	}

	rng := deck.DefaultRNG()
	if seed, ok, msg := parseUintParam(r, "seed"); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	} else if ok && seed != 0 {
		rng = deck.NewSeededRNG(seed)
	}

	s, err := session.Start(cfg, rng)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, sessionResp{Err: err.Error()})
		return
	}

	serveLock.Lock()
	id := nextID
	nextID++
	sessions[id] = s
	serveLock.Unlock()

	view := s.View()
	writeJSON(w, http.StatusOK, sessionResp{ID: id, View: &view})
}

func lookupSession(r *http.Request) (*session.Session, int, string) {
	id, ok, msg := parseIntParam(r, "id")
	if !ok || msg != "" {
		return nil, 0, "missing/invalid param id"
	}
	serveLock.Lock()
	s := sessions[id]
	serveLock.Unlock()
	if s == nil {
		return nil, 0, "unknown session id"
	}
	return s, id, ""
}

func handleStep(w http.ResponseWriter, r *http.Request) {
	s, _, msg := lookupSession(r)
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	pos, ok, pmsg := parseIntParam(r, "pos")
	if !ok || pmsg != "" {
		http.Error(w, "missing/invalid param pos", http.StatusBadRequest)
		return
	}
	pred, err := box.ParsePrediction(r.URL.Query().Get("pred"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	recovery := -1
	if v, ok, rmsg := parseIntParam(r, "recovery"); rmsg != "" {
		http.Error(w, rmsg, http.StatusBadRequest)
		return
	} else if ok {
		recovery = v
	}

	serveLock.Lock()
	outcome, err := s.Step(pos, pred, recovery)
	view := s.View()
	serveLock.Unlock()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, sessionResp{View: &view, Err: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sessionResp{View: &view, Last: outcome.String()})
}

func handleRecover(w http.ResponseWriter, r *http.Request) {
	s, _, msg := lookupSession(r)
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	pos, ok, pmsg := parseIntParam(r, "pos")
	if !ok || pmsg != "" {
		http.Error(w, "missing/invalid param pos", http.StatusBadRequest)
		return
	}
	serveLock.Lock()
	err := s.Recover(pos)
	view := s.View()
	serveLock.Unlock()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, sessionResp{View: &view, Err: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sessionResp{View: &view})
}

func handleUndo(w http.ResponseWriter, r *http.Request) {
	s, _, msg := lookupSession(r)
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	serveLock.Lock()
	err := s.Undo()
	view := s.View()
	serveLock.Unlock()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, sessionResp{View: &view, Err: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sessionResp{View: &view})
}

func handleState(w http.ResponseWriter, r *http.Request) {
	s, _, msg := lookupSession(r)
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	serveLock.Lock()
	view := s.View()
	serveLock.Unlock()
	writeJSON(w, http.StatusOK, sessionResp{View: &view})
}

func handleProbs(w http.ResponseWriter, r *http.Request) {
	s, _, msg := lookupSession(r)
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	pos, ok, pmsg := parseIntParam(r, "pos")
	if !ok || pmsg != "" {
		http.Error(w, "missing/invalid param pos", http.StatusBadRequest)
		return
	}
	serveLock.Lock()
	pr, err := s.Probabilities(pos)
	serveLock.Unlock()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, probsResp{Position: pos, Err: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, probsResp{
		Position:      pos,
		Higher:        pr.Higher,
		Lower:         pr.Lower,
		HigherOrEqual: pr.HigherOrEqual,
		LowerOrEqual:  pr.LowerOrEqual,
		ExactMatch:    pr.ExactMatch,
	})
}

func handleSimulate(w http.ResponseWriter, r *http.Request) {
	cfg, err := baseGame()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	params := sim.BatchParams{Config: cfg, Trials: config.DefaultTrials}
	if v, ok, msg := parseIntParam(r, "trials"); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	} else if ok {
		params.Trials = v
	}
	if v, ok, msg := parseIntParam(r, "jokers"); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	} else if ok {
		params.Config.Jokers = v
	}
	if v, ok, msg := parseIntParam(r, "budget"); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	} else if ok {
		params.Config.InclusiveBudget = v
	}
	if v, ok, msg := parseFloatParam(r, "threshold"); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	} else if ok {
		params.Config.Threshold = v
	}
	if v, ok, msg := parseUintParam(r, "seed"); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	} else if ok {
		params.Seed = v
	}
	if v, ok, msg := parseIntParam(r, "workers"); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	} else if ok {
		params.Workers = v
	}

	pol := sim.NewThresholdPolicy(params.Config.Threshold)
	stats, err := sim.RunBatch(r.Context(), params, pol)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type optimizeResp struct {
	Evaluated int                `json:"evaluated"`
	Results   []optimizer.Result `json:"results"`
}

func handleOptimize(w http.ResponseWriter, r *http.Request) {
	var raw config.RawConfig
	if serveLoader != nil {
		var err error
		raw, err = serveLoader.LoadMerged(flagPreset)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	space, err := config.Sweep(raw)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	params := optimizer.Params{Space: space, TrialsPerPoint: config.DefaultTrials}
	if v, ok, msg := parseIntParam(r, "trials"); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	} else if ok {
		params.TrialsPerPoint = v
	}
	if v, ok, msg := parseUintParam(r, "seed"); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	} else if ok {
		params.Seed = v
	}

	top := 10
	if v, ok, msg := parseIntParam(r, "top"); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	} else if ok && v > 0 {
		top = v
	}

	results, err := optimizer.Search(r.Context(), params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	evaluated := len(results)
	if top < len(results) {
		results = results[:top]
	}
	writeJSON(w, http.StatusOK, optimizeResp{Evaluated: evaluated, Results: results})
}

func runServe(cmd *cobra.Command, args []string) error {
	_, loader, err := loadRaw()
	if err != nil {
		return err
	}
	serveLoader = loader

	if serveLoader != nil {
		var presets []string
		if flagPreset != "" {
			presets = append(presets, flagPreset)
		}
		paths := serveLoader.WatchPaths(presets...)
		watcher := config.NewWatcher(paths, 2*time.Second, func(path string) {
			log.Printf("config changed: %s, cache invalidated", path)
			serveLoader.Invalidate()
		})
		watcher.Start()
		defer watcher.Stop()
	}

	http.HandleFunc("/session/new", handleNewSession)
	http.HandleFunc("/session/step", handleStep)
	http.HandleFunc("/session/recover", handleRecover)
	http.HandleFunc("/session/undo", handleUndo)
	http.HandleFunc("/session/state", handleState)
	http.HandleFunc("/session/probs", handleProbs)
	http.HandleFunc("/simulate", handleSimulate)
	http.HandleFunc("/optimize", handleOptimize)

	log.Println("listening on " + serveAddr + " ...")
	return http.ListenAndServe(serveAddr, nil)
}
