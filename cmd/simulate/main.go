package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// simulate hammers a running api-server with concurrent bookings for the SAME
// doctor and slot grid. If the uniqueness guards hold, every slot ends up with
// exactly one success and the rest of the attempts report slot_conflict.

type SimConfig struct {
	APIBaseURL string
	Workers    int
	Patients   int
	Date       string
}

type Metrics struct {
	Total    int64
	Success  int64
	Conflict int64
	Error    int64
}

func (m *Metrics) Record(status int) {
	atomic.AddInt64(&m.Total, 1)
	switch {
	case status == http.StatusCreated:
		atomic.AddInt64(&m.Success, 1)
	case status == http.StatusConflict:
		atomic.AddInt64(&m.Conflict, 1)
	default:
		atomic.AddInt64(&m.Error, 1)
	}
}

func loadSimConfig() SimConfig {
	cfg := SimConfig{
		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),
		Workers:    getInt("SIM_WORKERS", 20),
		Patients:   getInt("SIM_PATIENTS", 8),
		Date:       getEnv("SIM_DATE", time.Now().AddDate(0, 0, 7).Format("2006-01-02")),
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := loadSimConfig()
	log.Printf("simulate starting api=%s workers=%d patients=%d date=%s",
		cfg.APIBaseURL, cfg.Workers, cfg.Patients, cfg.Date)

	gofakeit.Seed(time.Now().UnixNano())
	client := &http.Client{Timeout: 10 * time.Second}

	doctorID, err := registerDoctor(client, cfg.APIBaseURL)
	if err != nil {
		log.Fatalf("register doctor: %v", err)
	}

	tokens := make([]string, 0, cfg.Patients)
	for i := 0; i < cfg.Patients; i++ {
		token, err := registerPatient(client, cfg.APIBaseURL)
		if err != nil {
			log.Fatalf("register patient: %v", err)
		}
		tokens = append(tokens, token)
	}

	date, err := time.ParseInLocation("2006-01-02", cfg.Date, time.Local)
	if err != nil {
		log.Fatalf("invalid SIM_DATE: %v", err)
	}

	var slots []time.Time
	for hour := 9; hour < 17; hour++ {
		for _, minute := range []int{0, 30} {
			slots = append(slots, time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, time.Local))
		}
	}

	var metrics Metrics
	var wg sync.WaitGroup

	start := time.Now()
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))

			// Every worker walks the whole grid in random order, so every
			// slot sees contention from several workers.
			order := rng.Perm(len(slots))
			for _, idx := range order {
				token := tokens[rng.Intn(len(tokens))]
				status, err := book(client, cfg.APIBaseURL, token, doctorID, slots[idx])
				if err != nil {
					log.Printf("book error: %v", err)
					atomic.AddInt64(&metrics.Total, 1)
					atomic.AddInt64(&metrics.Error, 1)
					continue
				}
				metrics.Record(status)
			}
		}(time.Now().UnixNano() + int64(w))
	}
	wg.Wait()
	elapsed := time.Since(start)

	fmt.Println()
	fmt.Println("=== simulation results ===")
	fmt.Printf("duration:   %s\n", elapsed.Round(time.Millisecond))
	fmt.Printf("attempts:   %d\n", metrics.Total)
	fmt.Printf("success:    %d\n", metrics.Success)
	fmt.Printf("conflict:   %d\n", metrics.Conflict)
	fmt.Printf("error:      %d\n", metrics.Error)

	if metrics.Success == int64(len(slots)) {
		fmt.Printf("OK: exactly one booking per slot (%d slots)\n", len(slots))
	} else {
		fmt.Printf("MISMATCH: expected %d successful bookings, got %d\n", len(slots), metrics.Success)
		os.Exit(1)
	}
}

func registerDoctor(client *http.Client, baseURL string) (string, error) {
	payload := map[string]any{
		"name":                "Dr. " + gofakeit.Name(),
		"registration_number": fmt.Sprintf("SIM-%06d", gofakeit.Number(100000, 999999)),
		"password":            "password123",
		"specialization":      "General Medicine",
		"qualification":       "MBBS",
		"experience":          "10 years",
		"mobile_number":       fmt.Sprintf("9%09d", gofakeit.Number(0, 999999999)),
		"city":                gofakeit.City(),
		"medical_council":     "Simulation Medical Council",
	}

	var resp struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := postJSON(client, baseURL+"/api/auth/doctor/register", "", payload, http.StatusCreated, &resp); err != nil {
		return "", err
	}
	return resp.User.ID, nil
}

func registerPatient(client *http.Client, baseURL string) (string, error) {
	payload := map[string]any{
		"name":     gofakeit.Name(),
		"aadhaar":  fmt.Sprintf("%012d", gofakeit.Number(100000000000, 999999999999)),
		"password": "password123",
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := postJSON(client, baseURL+"/api/auth/patient/register", "", payload, http.StatusCreated, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

func book(client *http.Client, baseURL, token, doctorID string, at time.Time) (int, error) {
	payload := map[string]any{
		"doctor_id":        doctorID,
		"appointment_time": at.Format(time.RFC3339),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/appointments", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}

func postJSON(client *http.Client, url, token string, payload any, wantStatus int, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != wantStatus {
		return fmt.Errorf("%s: status %d: %s", url, resp.StatusCode, raw)
	}

	if out != nil {
		return json.Unmarshal(raw, out)
	}
	return nil
}
