package server

import (
	"crypto/sha1"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
)

var parentError = "the identifier refers to a parent directory: %#v"

// baseURL guesses the public URL of the server, proxies included.
func baseURL(r *http.Request) string {
	scheme := "https"
	if r.TLS == nil {
		scheme = "http"
	}
	if r.Header.Get("X-Forwarded-Proto") != "" {
		scheme = r.Header.Get("X-Forwarded-Proto")
	}

	host := r.Host
	if r.Header.Get("X-Forwarded-Host") != "" {
		host = r.Header.Get("X-Forwarded-Host")
	}

	return fmt.Sprintf("%s://%s", scheme, host)
}

// cleanIdentifier checks the escaped identifier, refusing the ones climbing
// up the directories.
func cleanIdentifier(identifier string) (string, error) {
	unescaped, err := url.PathUnescape(identifier)
	if err != nil {
		return "", err
	}
	if hasParentReference(unescaped) {
		return "", fmt.Errorf(parentError, identifier)
	}
	return identifier, nil
}

// RedirectHandler sends the bare manifest identifiers to the viewer page.
func RedirectHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	identifier, err := cleanIdentifier(vars["identifier"])
	if err != nil {
		log.Printf("Identifier is frob %#v", vars["identifier"])
		http.NotFound(w, r)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("%s/%s/viewer.html", baseURL(r), identifier), http.StatusSeeOther)
}

// ViewerHandler responds with the viewer page of a manifest.
func ViewerHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	identifier, err := cleanIdentifier(vars["identifier"])
	if err != nil {
		log.Printf("Identifier is frob %#v", vars["identifier"])
		http.NotFound(w, r)
		return
	}

	config := r.Context().Value(ContextKey("config")).(*Config)

	base := baseURL(r)
	session := "ws" + strings.TrimPrefix(base, "http") + "/session/" + identifier
	manifest, _ := url.PathUnescape(identifier)
	p := &struct {
		Manifest string
		Images   string
		Session  string
	}{
		Manifest: manifest,
		Images:   fmt.Sprintf("%s/manifest/%s/images.json", base, identifier),
		Session:  session,
	}

	tpl := filepath.Join(config.Templates, "viewer.html")
	t, err := template.ParseFiles(tpl)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.Execute(w, p); err != nil {
		log.Printf("Cannot render the viewer: %v", err)
	}
}

func getETag(str string) string {
	return fmt.Sprintf("\"%x\"", sha1.Sum([]byte(str)))
}
