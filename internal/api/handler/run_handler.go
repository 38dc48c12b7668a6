package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/feldmangn/nih-awards-tracker/internal/model"
	"github.com/feldmangn/nih-awards-tracker/internal/pipeline"
	"github.com/feldmangn/nih-awards-tracker/internal/store"
	"github.com/feldmangn/nih-awards-tracker/pkg/utils"
)

// runTimeout bounds one background batch; a wide window with detail
// enrichment can take a while.
const runTimeout = 2 * time.Hour

// OutputDir returns the snapshot directory the API serves downloads from.
func OutputDir() string {
	if v := os.Getenv("TRACKER_OUT_DIR"); v != "" {
		return v
	}
	return "data"
}

// Health reports liveness.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{} "Service is up"
// @Router /healthz [get]
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"status": "ok"})
}

// CreateRun creates a new fetch run
// @Summary Create a new fetch run
// @Description Validate the run spec, persist it, and launch the batch in the background
// @Tags runs
// @Accept json
// @Produce json
// @Param run body model.RunSpec true "Run configuration"
// @Success 200 {object} map[string]interface{} "Run created successfully"
// @Failure 400 {object} map[string]interface{} "Invalid request payload"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs [post]
func CreateRun(w http.ResponseWriter, r *http.Request) {
	var spec model.RunSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	// 1. Validate agency filters before anything touches the network
	for _, agency := range spec.Agencies {
		if err := agency.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if spec.OutDir == "" {
		spec.OutDir = OutputDir()
	}

	// 2. Generate run ID
	runID := uuid.New().String()

	// 3. Save run to DB
	if err := store.SaveRun(runID, spec); err != nil {
		http.Error(w, "Failed to save run", http.StatusInternalServerError)
		return
	}

	// 4. Start the batch asynchronously
	cfg := model.ConfigFromSpec(spec)
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)

	go func() {
		defer cancel()
		pipeline.RunBatch(ctx, runID, cfg)
	}()

	// 5. Return response
	resp := map[string]interface{}{
		"message":   "Run created successfully!",
		"runID":     runID,
		"status":    "pending",
		"createdAt": time.Now().UTC(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// ListRuns retrieves all fetch runs
// @Summary List all runs
// @Tags runs
// @Produce json
// @Success 200 {array} map[string]interface{} "List of runs"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs [get]
func ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := store.ListRuns()
	if err != nil {
		http.Error(w, "Failed to fetch runs", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runs)
}

// GetRun retrieves a specific run
// @Summary Get run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Run details"
// @Failure 404 {object} map[string]interface{} "Run not found"
// @Router /runs/{id} [get]
func GetRun(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDFromPath(w, r, "")
	if !ok {
		return
	}

	run, err := store.GetRun(runID)
	if err != nil {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(run)
}

// GetRunErrors retrieves errors for a run
// @Summary Get run errors
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Run errors"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs/{id}/errors [get]
func GetRunErrors(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDFromPath(w, r, "/errors")
	if !ok {
		return
	}

	errors, err := store.GetRunErrors(runID)
	if err != nil {
		http.Error(w, "Failed to retrieve errors", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"run_id": runID,
		"errors": errors,
		"count":  len(errors),
	})
}

// GetRunResults retrieves per-agency outcomes for a run
// @Summary Get run results
// @Description Per-agency outcomes with snapshot download URLs
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Run results"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs/{id}/results [get]
func GetRunResults(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDFromPath(w, r, "/results")
	if !ok {
		return
	}

	results, err := store.GetAgencyResults(runID)
	if err != nil {
		http.Error(w, "Failed to retrieve results", http.StatusInternalServerError)
		return
	}

	om := utils.NewOutputManager(OutputDir())
	for _, result := range results {
		if csvPath, _ := result["csvPath"].(string); csvPath != "" {
			result["downloads"] = map[string]string{
				"csv":        om.DownloadURL(csvPath),
				"json":       om.DownloadURL(result["jsonPath"].(string)),
				"recipients": om.DownloadURL(result["recipientsPath"].(string)),
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"run_id":  runID,
		"results": results,
		"count":   len(results),
	})
}

// DownloadSnapshot serves one snapshot file from the output directory
// @Summary Download a snapshot file
// @Tags downloads
// @Produce octet-stream
// @Param file path string true "Snapshot file name"
// @Success 200 {file} file "Snapshot content"
// @Failure 404 {object} map[string]interface{} "File not found"
// @Router /download/{file} [get]
func DownloadSnapshot(w http.ResponseWriter, r *http.Request) {
	prefix := "/api/v1/download/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}

	// filepath.Base strips any traversal attempt
	fileName := filepath.Base(r.URL.Path[len(prefix):])
	if fileName == "" || fileName == "." {
		http.Error(w, "File name is required", http.StatusBadRequest)
		return
	}

	fullPath := filepath.Join(OutputDir(), fileName)
	if _, err := os.Stat(fullPath); err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	http.ServeFile(w, r, fullPath)
}

// runIDFromPath extracts the run ID from /api/v1/runs/{id}<suffix>.
func runIDFromPath(w http.ResponseWriter, r *http.Request, suffix string) (string, bool) {
	path := r.URL.Path
	prefix := "/api/v1/runs/"

	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return "", false
	}

	runID := path[len(prefix) : len(path)-len(suffix)]
	if runID == "" {
		http.Error(w, "Run ID is required", http.StatusBadRequest)
		return "", false
	}
	return runID, true
}
