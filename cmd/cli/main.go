package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"zooguide/pkg/models"
)

const defaultBaseURL = "http://localhost:3000"

type predictResponse struct {
	Message     string               `json:"message"`
	Predictions []models.Prediction  `json:"predictions"`
	AnimalInfo  *models.AnimalRecord `json:"animalInfo"`
}

type rankingResponse struct {
	Data        []models.RankingEntry `json:"data"`
	LastUpdated *string               `json:"lastUpdated"`
}

func main() {
	global := flag.NewFlagSet("zooguide", flag.ExitOnError)
	baseURL := global.String("api", defaultBaseURL, "API base URL")
	if err := global.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	client := &http.Client{Timeout: 45 * time.Second}

	switch args[0] {
	case "predict":
		handlePredict(ctx, client, *baseURL, args[1:])
	case "quiz":
		handleQuiz(ctx, client, *baseURL, args[1:])
	case "ranking":
		var resp rankingResponse
		if err := doJSON(ctx, client, http.MethodGet, *baseURL+"/api/ranking", &resp); err != nil {
			log.Fatalf("ranking failed: %v", err)
		}
		printRanking(resp)
	case "health":
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodGet, *baseURL+"/api/health", &resp); err != nil {
			log.Fatalf("health failed: %v", err)
		}
		printJSON(resp)
	case "watch":
		handleWatch(*baseURL, args[1:])
	default:
		printUsage()
		os.Exit(1)
	}
}

func handlePredict(ctx context.Context, client *http.Client, baseURL string, args []string) {
	fs := flag.NewFlagSet("predict", flag.ExitOnError)
	imagePath := fs.String("image", "", "image file to classify")
	anonID := fs.String("id", "", "anonymous client id")
	_ = fs.Parse(args)

	if *imagePath == "" {
		log.Fatal("usage: zooguide predict -image <file> [-id <anonymous id>]")
	}

	status, resp, err := uploadImage(ctx, client, baseURL+"/api/predict", *imagePath, *anonID)
	if err != nil {
		log.Fatalf("predict failed: %v", err)
	}

	fmt.Printf("[%d] %s\n", status, resp.Message)
	for _, p := range resp.Predictions {
		fmt.Printf("  %-24s %6.2f%%\n", p.TagName, p.Probability*100)
	}
	if resp.AnimalInfo != nil {
		a := resp.AnimalInfo
		fmt.Printf("\n%s\n  habitat: %s\n  diet: %s\n  endangered: %s\n  %s\n", a.Name, a.Habitat, a.Diet, a.Endangered, a.Summary)
		for _, f := range a.FunFacts {
			fmt.Printf("  * %s\n", f)
		}
	}
}

func handleQuiz(ctx context.Context, client *http.Client, baseURL string, args []string) {
	fs := flag.NewFlagSet("quiz", flag.ExitOnError)
	out := fs.String("out", "", "write the quiz as JSON to this path instead of printing it")
	_ = fs.Parse(args)

	var questions []models.QuizQuestion
	if err := doJSON(ctx, client, http.MethodGet, baseURL+"/api/quiz", &questions); err != nil {
		log.Fatalf("quiz failed: %v", err)
	}

	if *out != "" {
		if err := writeJSON(*out, questions); err != nil {
			log.Fatalf("write quiz: %v", err)
		}
		log.Printf("✅ wrote %d questions to %s", len(questions), *out)
		return
	}

	for i, q := range questions {
		fmt.Printf("%d. [%s] %s\n", i+1, q.Type, q.Question)
		for j, o := range q.Options {
			mark := " "
			if o == q.Answer {
				mark = "*"
			}
			fmt.Printf("   %s %c) %s\n", mark, 'a'+j, o)
		}
	}
}

func handleWatch(baseURL string, args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	transport := fs.String("transport", "ws", "ws or tcp")
	addr := fs.String("addr", "127.0.0.1:7070", "TCP feed address")
	pretty := fs.Bool("pretty", true, "pretty print JSON events")
	_ = fs.Parse(args)

	for {
		var err error
		switch *transport {
		case "ws":
			wsURL, uerr := websocketURL(baseURL, "/ws")
			if uerr != nil {
				log.Fatalf("invalid api url: %v", uerr)
			}
			err = runWebSocket(wsURL, *pretty)
		case "tcp":
			err = runFeedTCP(*addr, *pretty)
		default:
			log.Fatal("usage: zooguide watch [-transport ws|tcp]")
		}
		log.Printf("[watch] disconnected: %v", err)
		time.Sleep(1 * time.Second) // auto reconnect
	}
}

func runFeedTCP(addr string, pretty bool) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	log.Printf("[watch] connected to %s", addr)
	reader := bufio.NewScanner(conn)
	for reader.Scan() {
		printEvent(reader.Bytes(), pretty)
	}
	if err := reader.Err(); err != nil {
		return err
	}
	return os.ErrClosed
}

func runWebSocket(wsURL string, pretty bool) error {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Printf("[watch] connected to %s", wsURL)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		printEvent(bytes.TrimSpace(msg), pretty)
	}
}

func printEvent(line []byte, pretty bool) {
	if !pretty {
		fmt.Println(string(line))
		return
	}
	var obj map[string]any
	if err := json.Unmarshal(line, &obj); err != nil {
		fmt.Println(string(line))
		return
	}
	b, _ := json.MarshalIndent(obj, "", "  ")
	fmt.Println(string(b))
}

func printRanking(resp rankingResponse) {
	if resp.LastUpdated == nil {
		fmt.Println("ranking not computed yet")
		return
	}
	fmt.Printf("today's top animals (updated %s)\n", *resp.LastUpdated)
	if len(resp.Data) == 0 {
		fmt.Println("  no confident sightings yet")
	}
	for i, e := range resp.Data {
		fmt.Printf("  %d. %-20s %d\n", i+1, e.Name, e.Count)
	}
}

// uploadImage posts the file as multipart field "image". Non-2xx answers
// still carry a JSON body, so the status is returned alongside it.
func uploadImage(ctx context.Context, client *http.Client, endpoint, path, anonID string) (int, predictResponse, error) {
	var out predictResponse

	f, err := os.Open(path)
	if err != nil {
		return 0, out, err
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filepath.Base(path))
	if err != nil {
		return 0, out, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return 0, out, err
	}
	if anonID != "" {
		if err := mw.WriteField("anonymousId", anonID); err != nil {
			return 0, out, err
		}
	}
	if err := mw.Close(); err != nil {
		return 0, out, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return 0, out, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := client.Do(req)
	if err != nil {
		return 0, out, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return resp.StatusCode, out, fmt.Errorf("decode response (%d): %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return resp.StatusCode, out, nil
}

func doJSON(ctx context.Context, client *http.Client, method, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s failed: %s", method, endpoint, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

func writeJSON(path string, v any) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("json: %v", err)
	}
	fmt.Println(string(b))
}

func websocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", errors.New("missing host")
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return (&url.URL{
		Scheme: scheme,
		Host:   u.Host,
		Path:   path,
	}).String(), nil
}

func printUsage() {
	fmt.Println("zooguide [-api url] <command> [flags]")
	fmt.Println("commands:")
	fmt.Println("  predict -image <file> [-id <anonymous id>]")
	fmt.Println("  quiz [-out file.json]")
	fmt.Println("  ranking")
	fmt.Println("  health")
	fmt.Println("  watch [-transport ws|tcp] [-addr host:port]")
}
