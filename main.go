package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	auth "scanmaster/internal/auth"
	batch "scanmaster/internal/calc/batch"
	coverage "scanmaster/internal/calc/coverage"
	dac "scanmaster/internal/calc/dac"
	export "scanmaster/internal/calc/export"
	importer "scanmaster/internal/calc/importer"
	report "scanmaster/internal/calc/report"
	compliance "scanmaster/internal/compliance"
	profile "scanmaster/internal/profile"
	repo "scanmaster/internal/repo"
	sheets "scanmaster/internal/sheets"
)

var wg sync.WaitGroup

func CORS(mux *mux.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})
}

func HandleList(mux *mux.Router, db *sql.DB) {
	userRepo := repo.NewPostgresUserDB(db)
	err := godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file")
	}
	tokenKey := os.Getenv("TOKEN_KEY")
	if tokenKey == "" {
		log.Fatal("TOKEN_KEY environment variable is not set")
	}

	authEnv := &auth.Authenv{JWTkey: []byte(tokenKey), Repo: userRepo}
	profileH := &profile.ProfileHandler{Repo: userRepo}

	limiter := auth.NewIPRateLimiter(1, 3)

	api := mux.PathPrefix("/api").Subrouter()
	api.Use(limiter.LimitMiddleware)

	api.HandleFunc("/login", authEnv.AuthHandler).Methods("POST")
	api.HandleFunc("/register", authEnv.RegisterHandler).Methods("POST")

	secureApi := api.PathPrefix("/user").Subrouter()
	secureApi.Use(authEnv.AuthMiddleware)

	secureApi.HandleFunc("/profile", profileH.GetProfile).Methods("GET")
	secureApi.HandleFunc("/profile", profileH.UpdateProfile).Methods("PATCH", "PUT")
	secureApi.HandleFunc("/profile/{id:[0-9]+}", profileH.GetProfile).Methods("GET")
	secureApi.HandleFunc("/upload-stamp", profileH.UploadStamp).Methods("POST")

	coverageH := &coverage.Handler{}
	dacH := &dac.Handler{}
	complianceH := &compliance.Handler{}
	batchH := &batch.Handler{}
	exportH := &export.Handler{}
	importerH := &importer.Handler{}
	reportH := &report.Handler{}
	sheetsH := &sheets.Handler{Repo: userRepo}

	secureApi.HandleFunc("/tools/coverage/calc", coverageH.Calc).Methods("POST")
	secureApi.HandleFunc("/tools/coverage/optimize", coverageH.Optimize).Methods("POST")
	secureApi.HandleFunc("/tools/coverage/recommend", coverageH.Recommend).Methods("POST")
	secureApi.HandleFunc("/tools/coverage/batch", batchH.Coverage).Methods("POST")
	secureApi.HandleFunc("/tools/dac/calc", dacH.Calc).Methods("POST")
	secureApi.HandleFunc("/tools/dac/tcg", dacH.TCG).Methods("POST")
	secureApi.HandleFunc("/tools/dac/evaluate", dacH.Evaluate).Methods("POST")
	secureApi.HandleFunc("/tools/dac/ams-preset", dacH.AMSPreset).Methods("POST")
	secureApi.HandleFunc("/tools/dac/export", exportH.DAC).Methods("POST")
	secureApi.HandleFunc("/tools/dac/import-indications", importerH.Indications).Methods("POST")
	secureApi.HandleFunc("/tools/compliance/check", complianceH.Check).Methods("POST")
	secureApi.HandleFunc("/tools/report/pdf", reportH.Generate).Methods("POST")

	secureApi.HandleFunc("/sheets", sheetsH.Save).Methods("POST")
	secureApi.HandleFunc("/sheets", sheetsH.List).Methods("GET")
	secureApi.HandleFunc("/sheets/{id}", sheetsH.Get).Methods("GET")
	secureApi.HandleFunc("/sheets/{id}/submit", sheetsH.Submit).Methods("POST")

	secureApi.HandleFunc("/docs/list", func(w http.ResponseWriter, r *http.Request) {
		type Doc struct {
			Name string `json:"name"`
			Path string `json:"path"`
		}
		var docs []Doc
		fs.WalkDir(os.DirFS("./docs"), ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			docs = append(docs, Doc{Name: d.Name(), Path: path})
			return nil
		})
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(docs)
	}).Methods("GET")

	mux.PathPrefix("/uploads/").
		Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir("./static/uploads/"))))

	authFileServer := http.FileServer(http.Dir("./static/auth"))
	mux.PathPrefix("/auth/").
		Handler(authEnv.RedirectIfLoggedIn(http.StripPrefix("/auth", authFileServer)))
	profileFileServer := http.FileServer(http.Dir("./static/profile"))
	mux.Handle("/profile/{id:[0-9]+}", authEnv.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./static/profile/index.html")
	})))
	mux.PathPrefix("/profile/").
		Handler(authEnv.AuthMiddleware(http.StripPrefix("/profile", profileFileServer)))
	mux.PathPrefix("/docs/").
		Handler(authEnv.AuthMiddleware(http.StripPrefix("/docs", http.FileServer(http.Dir("./docs")))))
	mainFileServer := http.FileServer(http.Dir("./static/main"))
	mux.PathPrefix("/").
		Handler(mainFileServer)

}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db := auth.InitDB()
	defer db.Close()
	mux := mux.NewRouter()
	log.Println("Starting server on :443")
	HandleList(mux, db)
	handler := CORS(mux)

	server := &http.Server{
		Addr:    ":443",
		Handler: handler,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := server.ListenAndServeTLS("server.crt", "server.key"); err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	fmt.Println("Shutdown signal received!")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")

	wg.Wait()
}
