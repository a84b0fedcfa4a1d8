// Command seedload posts synthetic registrations against a running API
// instance. It exercises the full intake path, multipart upload included,
// which the admin test-data endpoint bypasses.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sync"
	"sync/atomic"
	"time"
)

var (
	firstNames = []string{"Ahmed", "Mohamed", "Omar", "Sara", "Nour", "Dina", "Youssef", "Heba", "Khaled", "Yasmin"}
	lastNames  = []string{"Ibrahim", "Hassan", "Ali", "Mahmoud", "Youssef", "Omar", "Amr", "Khaled"}
	unis       = []string{"Cairo University", "Ain Shams University", "Egyptian Chinese University", "Alexandria University", "Helwan University"}
	prefixes   = []string{"010", "011", "012", "015"}
)

// Smallest valid PNG, enough to pass MIME and size checks.
var pngStub = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4,
	0x89, 0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4E,
	0x44, 0xAE, 0x42, 0x60, 0x82,
}

type result struct {
	created    int64
	duplicates int64
	failures   int64
}

func main() {
	var (
		base        string
		count       int
		concurrency int
		timeout     time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL")
	flag.IntVar(&count, "count", 100, "number of registrations to submit")
	flag.IntVar(&concurrency, "concurrency", 4, "parallel submitters")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP client timeout")
	flag.Parse()

	if concurrency < 1 {
		concurrency = 1
	}

	client := &http.Client{Timeout: timeout}
	jobs := make(chan int)
	var res result
	var wg sync.WaitGroup

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				status, err := submit(client, base, i)
				switch {
				case err != nil:
					atomic.AddInt64(&res.failures, 1)
					log.Printf("submit %d failed: %v", i, err)
				case status == http.StatusCreated:
					atomic.AddInt64(&res.created, 1)
				case status == http.StatusConflict:
					atomic.AddInt64(&res.duplicates, 1)
				default:
					atomic.AddInt64(&res.failures, 1)
					log.Printf("submit %d returned status %d", i, status)
				}
			}
		}()
	}

	for i := 0; i < count; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	fmt.Printf("submitted %d registrations in %s\n", count, time.Since(start).Round(time.Millisecond))
	fmt.Printf("  created:    %d\n", res.created)
	fmt.Printf("  duplicates: %d\n", res.duplicates)
	fmt.Printf("  failures:   %d\n", res.failures)
}

func submit(client *http.Client, base string, seq int) (int, error) {
	first := firstNames[rand.Intn(len(firstNames))]
	last := lastNames[rand.Intn(len(lastNames))]

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fields := map[string]string{
		"name":       first + " " + last,
		"email":      fmt.Sprintf("%s.%s.seed%d@example.com", first, last, seq),
		"phone":      fmt.Sprintf("%s%08d", prefixes[rand.Intn(len(prefixes))], rand.Intn(100000000)),
		"phoneType":  "egyptian",
		"university": unis[rand.Intn(len(unis))],
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return 0, err
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="paymentProof"; filename="proof.png"`)
	header.Set("Content-Type", "image/png")
	part, err := w.CreatePart(header)
	if err != nil {
		return 0, err
	}
	if _, err := part.Write(pngStub); err != nil {
		return 0, err
	}
	if err := w.Close(); err != nil {
		return 0, err
	}

	req, err := http.NewRequest(http.MethodPost, base+"/api/v1/registrations", &body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}
