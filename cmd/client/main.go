// Command client runs a smoke test against a running API: it registers a user,
// uploads a file and an image, reads them back and publishes the file.
package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"
)

type client struct {
	base  string
	token string
	http  *http.Client
}

type file struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	IsPublic bool   `json:"isPublic"`
	ParentID int64  `json:"parentId"`
}

func main() {
	base := flag.String("addr", "http://localhost:5000", "API base URL")
	email := flag.String("email", "test_client@example.com", "user email")
	password := flag.String("password", "password123", "user password")
	flag.Parse()

	c := &client{base: *base, http: &http.Client{Timeout: 30 * time.Second}}

	status, body, err := c.do(http.MethodPost, "/users", map[string]string{"email": *email, "password": *password}, nil)
	if err != nil {
		log.Fatalf("register: %v", err)
	}
	if status != http.StatusCreated {
		log.Printf("register returned %d (user may already exist): %s", status, body)
	}

	status, body, err = c.do(http.MethodGet, "/connect", nil, func(r *http.Request) { r.SetBasicAuth(*email, *password) })
	if err != nil || status != http.StatusOK {
		log.Fatalf("connect: %d %s %v", status, body, err)
	}
	var conn struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &conn); err != nil {
		log.Fatalf("decode token: %v", err)
	}
	c.token = conn.Token
	log.Printf("connected, token %s", c.token)

	folder := c.upload(map[string]any{"name": "smoke", "type": "folder"})
	doc := c.upload(map[string]any{
		"name": "sample.txt", "type": "file", "parentId": folder.ID,
		"data": base64.StdEncoding.EncodeToString([]byte("smoke test content")),
	})
	img := c.upload(map[string]any{
		"name": "sample.png", "type": "image", "parentId": folder.ID,
		"data": base64.StdEncoding.EncodeToString(samplePNG()),
	})

	_, body, err = c.do(http.MethodGet, "/files?parentId="+strconv.FormatInt(folder.ID, 10), nil, nil)
	if err != nil {
		log.Fatalf("list: %v", err)
	}
	log.Printf("folder listing: %s", body)

	_, body, err = c.do(http.MethodGet, fmt.Sprintf("/files/%d/data", doc.ID), nil, nil)
	if err != nil {
		log.Fatalf("read: %v", err)
	}
	log.Printf("read back %q", body)

	if _, _, err := c.do(http.MethodPut, fmt.Sprintf("/files/%d/publish", doc.ID), nil, nil); err != nil {
		log.Fatalf("publish: %v", err)
	}

	// thumbnails are generated asynchronously; poll until the smallest one exists
	for i := 0; i < 20; i++ {
		status, body, err = c.do(http.MethodGet, fmt.Sprintf("/files/%d/data?size=100", img.ID), nil, nil)
		if err == nil && status == http.StatusOK {
			log.Printf("thumbnail ready, %d bytes", len(body))
			break
		}
		time.Sleep(500 * time.Millisecond)
	}
	if status != http.StatusOK {
		log.Printf("thumbnail not ready yet (last status %d)", status)
	}

	if _, _, err := c.do(http.MethodGet, "/disconnect", nil, nil); err != nil {
		log.Fatalf("disconnect: %v", err)
	}
	log.Println("done")
}

func (c *client) upload(req map[string]any) file {
	status, body, err := c.do(http.MethodPost, "/files", req, nil)
	if err != nil || status != http.StatusCreated {
		log.Fatalf("upload %v: %d %s %v", req["name"], status, body, err)
	}
	var f file
	if err := json.Unmarshal(body, &f); err != nil {
		log.Fatalf("decode file: %v", err)
	}
	log.Printf("uploaded %s as %d", f.Name, f.ID)
	return f
}

func (c *client) do(method, path string, payload any, setup func(*http.Request)) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, c.base+path, body)
	if err != nil {
		return 0, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("X-Token", c.token)
	}
	if setup != nil {
		setup(req)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	return resp.StatusCode, data, err
}

func samplePNG() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 640, 480))
	for x := 0; x < 640; x++ {
		for y := 0; y < 480; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}
