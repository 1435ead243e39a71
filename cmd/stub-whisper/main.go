// Command stub-whisper is a local stand-in for the Whisper transcription
// endpoint, useful for developing against the service without an API key.
// It accepts the multipart request shape and echoes a canned transcript.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
)

func transcribeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	model := r.FormValue("model")
	language := r.FormValue("language")
	temperature := r.FormValue("temperature")

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	size, err := io.Copy(io.Discard, file)
	if err != nil {
		http.Error(w, "Error reading file", http.StatusInternalServerError)
		return
	}

	log.Printf("transcription request: file=%s size=%d model=%s language=%s temperature=%s",
		header.Filename, size, model, language, temperature)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"text": "你好，这是一段测试转写。",
	})
}

func main() {
	port := flag.Int("port", 9000, "Port to listen on")
	flag.Parse()

	http.HandleFunc("/v1/audio/transcriptions", transcribeHandler)

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("stub whisper endpoint listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, nil))
}
