package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/hamed0406/linkchecker/internal/linkcheck"
)

func TestReadURLs_SkipsBlankAndComments(t *testing.T) {
	in := "https://a.example\n\n  # comment\n  https://b.example  \n"
	got, err := readURLs(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Fatalf("readURLs = %q", got)
	}
}

func TestValidateAll_ChunksPastBatchLimit(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	v := linkcheck.New(zap.NewNop())
	v.Guard = linkcheck.SchemeOnly
	v.MaxBatch = 3

	urls := make([]string, 7)
	for i := range urls {
		urls[i] = ts.URL + "/" + string(rune('a'+i))
	}
	res, err := validateAll(context.Background(), v, urls)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 7 {
		t.Fatalf("want 7 results, got %d", len(res))
	}
	for i, r := range res {
		if r.URL != urls[i] || !r.IsValid {
			t.Fatalf("result %d: %+v", i, r)
		}
	}
}

func TestRender_TableAndJSON(t *testing.T) {
	results := []linkcheck.Result{
		{URL: "https://ok.example", IsValid: true, StatusCode: 200},
		{URL: "ftp://x", Error: linkcheck.ReasonProtocol},
	}

	var buf bytes.Buffer
	if err := render(&buf, results, false); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "OK") || !strings.Contains(out, "FAIL") || !strings.Contains(out, linkcheck.ReasonProtocol) {
		t.Fatalf("table output:\n%s", out)
	}

	buf.Reset()
	if err := render(&buf, results, true); err != nil {
		t.Fatal(err)
	}
	var back []linkcheck.Result
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("json output: %v", err)
	}
	if len(back) != 2 || back[1].Error != linkcheck.ReasonProtocol {
		t.Fatalf("json results: %+v", back)
	}
}

func TestValidateCmd_ExitsWithInvalidLinks(t *testing.T) {
	cmd := newValidateCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--json", "ftp://nope"})

	err := cmd.ExecuteContext(context.Background())
	if !errors.Is(err, errInvalidLinks) {
		t.Fatalf("want errInvalidLinks, got %v", err)
	}
	if !strings.Contains(out.String(), linkcheck.ReasonProtocol) {
		t.Fatalf("output missing reason:\n%s", out.String())
	}
}
