// Package api はgameshelfのAPIサーバー実装を提供します。
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stsysd/gameshelf/config"
	"github.com/stsysd/gameshelf/heatmap"
	"github.com/stsysd/gameshelf/model"
	"github.com/stsysd/gameshelf/offline"
	"github.com/stsysd/gameshelf/state"
	"github.com/stsysd/gameshelf/store"
	"github.com/stsysd/gameshelf/usecase"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Deps はサーバーが利用するコンポーネントです。
type Deps struct {
	// ゲームの永続化
	Repository usecase.GameRepository
	// オフラインワーカー（nilの場合は無効）
	Worker *offline.Controller
	// API以外のリクエストの転送先（アセットオリジンへのリバースプロキシなど）
	Assets http.Handler
	Logger *zap.Logger
}

// Server はAPIサーバーの構造体です。
type Server struct {
	router  *http.ServeMux
	config  *config.Config
	logger  *zap.Logger
	limiter *rate.Limiter

	addGame    *usecase.AddGame
	getGame    *usecase.GetGame
	getGames   *usecase.GetGames
	deleteGame *usecase.DeleteGame
	games      *state.GamesStore

	worker *offline.Controller
	assets http.Handler
}

// ErrorResponse はエラーレスポンスの構造体です。
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
	Field string `json:"field,omitempty"`
}

// writeJSON はJSON形式でレスポンスを返却します。
func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Error encoding response", zap.Error(err))
	}
}

// writeJSONError はJSON形式でエラーレスポンスを返却します。
func (s *Server) writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	s.writeJSON(w, statusCode, ErrorResponse{Error: message, Code: statusCode})
}

// NewServer は新しいAPIサーバーインスタンスを生成します。
func NewServer(cfg *config.Config, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	getGames := usecase.NewGetGames(deps.Repository)
	s := &Server{
		router:     http.NewServeMux(),
		config:     cfg,
		logger:     logger,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		addGame:    usecase.NewAddGame(deps.Repository),
		getGame:    usecase.NewGetGame(deps.Repository),
		getGames:   getGames,
		deleteGame: usecase.NewDeleteGame(deps.Repository),
		games:      state.NewGamesStore(getGames, logger.Named("games")),
		worker:     deps.Worker,
		assets:     deps.Assets,
	}
	s.routes()
	return s
}

// Games はサーバーが保持するゲームストアを返します。
func (s *Server) Games() *state.GamesStore {
	return s.games
}

// routes はAPIエンドポイントのルーティングを設定します。
func (s *Server) routes() {
	// ヘルスチェックエンドポイントは認証不要
	s.router.HandleFunc("GET /healthz", s.handleHealthCheck)

	// すべての保護されたエンドポイントをまずセキュアなルータに登録
	securedHandler := http.NewServeMux()

	// Game endpoints
	securedHandler.HandleFunc("POST /api/v0/games", s.handleAddGame)
	securedHandler.HandleFunc("GET /api/v0/games", s.handleListGames)
	securedHandler.HandleFunc("GET /api/v0/games/events", s.handleGameEvents)
	securedHandler.HandleFunc("GET /api/v0/games/{game_id}", s.handleGetGame)
	securedHandler.HandleFunc("DELETE /api/v0/games/{game_id}", s.handleDeleteGame)

	// Worker endpoints
	securedHandler.HandleFunc("GET /api/v0/worker", s.handleWorkerStatus)
	securedHandler.HandleFunc("POST /api/v0/worker/messages", s.handlePostWorkerMessage)

	// 認証ミドルウェアとレート制限を適用し、メインルータにマウント
	s.router.Handle("/api/", s.rateLimitMiddleware(s.authMiddleware(securedHandler)))

	// Graph endpoints - support both with and without .svg extension
	s.router.HandleFunc("GET /graph.svg", s.handleGetGraph)
	s.router.HandleFunc("GET /graph", s.handleGetGraph)

	// それ以外はオフラインワーカー経由でアセットを返す
	s.router.Handle("/", s.assetHandler())
}

func (s *Server) assetHandler() http.Handler {
	next := s.assets
	if next == nil {
		next = http.NotFoundHandler()
	}
	if s.worker == nil {
		return next
	}
	return offline.Middleware(s.worker, offline.NewLogger(s.logger), next)
}

// ServeHTTP はServer構造体をhttp.Handlerとして実装します。
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.loggingMiddleware(s.router).ServeHTTP(w, r)
}

// handleHealthCheck はヘルスチェックエンドポイントのハンドラーです。
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GameResponse はゲームのレスポンス表現です。
type GameResponse struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Platform     string  `json:"platform"`
	Format       string  `json:"format"`
	PurchaseDate *string `json:"purchaseDate"`
	Status       string  `json:"status"`
}

func newGameResponse(g *model.Game) GameResponse {
	resp := GameResponse{
		ID:          g.ID(),
		Title:       g.Title(),
		Description: g.Description(),
		Platform:    g.Platform(),
		Format:      g.Format(),
		Status:      string(g.Status()),
	}
	if d := g.PurchaseDate(); d != nil {
		s := d.Format(time.RFC3339)
		resp.PurchaseDate = &s
	}
	return resp
}

// GamesListResponse はゲームストアのスナップショットのレスポンス表現です。
type GamesListResponse struct {
	Games     []GameResponse `json:"games"`
	IsLoading bool           `json:"isLoading"`
	Error     *string        `json:"error"`
}

func newGamesListResponse(list *state.GamesListState) GamesListResponse {
	games := make([]GameResponse, 0, len(list.Games))
	for _, g := range list.Games {
		games = append(games, newGameResponse(g))
	}
	return GamesListResponse{Games: games, IsLoading: list.IsLoading, Error: list.Error}
}

// NewAddGameParams creates the add-game input from an HTTP request.
// purchaseDate accepts a local date (YYYY-MM-DD) or RFC3339; the id is generated when empty.
func NewAddGameParams(r *http.Request) (*usecase.AddGameDTO, error) {
	var requestBody struct {
		ID           string `json:"id"`
		Title        string `json:"title"`
		Description  string `json:"description"`
		Platform     string `json:"platform"`
		Format       string `json:"format"`
		PurchaseDate string `json:"purchaseDate"`
		Status       string `json:"status"`
	}

	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}

	var purchaseDate *time.Time
	if s := strings.TrimSpace(requestBody.PurchaseDate); s != "" {
		d, err := parsePurchaseDate(s)
		if err != nil {
			return nil, fmt.Errorf("invalid purchaseDate: %s", s)
		}
		purchaseDate = &d
	}

	id := requestBody.ID
	if strings.TrimSpace(id) == "" {
		id = uuid.NewString()
	}

	return &usecase.AddGameDTO{
		ID:           id,
		Title:        requestBody.Title,
		Description:  requestBody.Description,
		Platform:     requestBody.Platform,
		Format:       requestBody.Format,
		PurchaseDate: purchaseDate,
		Status:       requestBody.Status,
	}, nil
}

func parsePurchaseDate(s string) (time.Time, error) {
	if d, err := model.ParseLocalDate(s); err == nil {
		return d, nil
	}
	return time.Parse(time.RFC3339, s)
}

// handleAddGame はゲームを追加するハンドラーです。
func (s *Server) handleAddGame(w http.ResponseWriter, r *http.Request) {
	params, err := NewAddGameParams(r)
	if err != nil {
		s.writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	added := s.addGame.Execute(r.Context(), *params)
	if added.IsErr() {
		appErr := added.UnwrapErr()
		var ve *usecase.ValidationError
		if errors.As(appErr, &ve) {
			s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: ve.Message, Code: http.StatusBadRequest, Field: ve.Field})
			return
		}
		s.logger.Error("Error saving game", zap.String("game_id", params.ID), zap.Error(appErr))
		s.writeJSONError(w, "Failed to save game. Please try again.", http.StatusInternalServerError)
		return
	}

	s.refreshGames(r.Context())
	s.writeJSON(w, http.StatusCreated, map[string]string{"id": params.ID})
}

// handleListGames はゲームストアを再読み込みしてスナップショットを返すハンドラーです。
func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	if err := s.games.FetchGames(r.Context()); err != nil {
		s.logger.Error("Error loading games", zap.Error(err))
		s.writeJSONError(w, state.LoadErrorMessage, http.StatusInternalServerError)
		return
	}

	list := s.games.GetGamesList()
	if list.Error != nil {
		s.writeJSONError(w, *list.Error, http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, newGamesListResponse(list))
}

// handleGetGame は指定IDのゲームを返すハンドラーです。
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("game_id")

	found, err := s.getGame.Execute(r.Context(), id)
	if err != nil {
		s.logger.Error("Error getting game", zap.String("game_id", id), zap.Error(err))
		s.writeJSONError(w, "Failed to retrieve game", http.StatusInternalServerError)
		return
	}
	if found.IsErr() {
		if errors.Is(found.UnwrapErr(), store.ErrNotFound) {
			s.writeJSONError(w, "Game not found", http.StatusNotFound)
			return
		}
		s.logger.Error("Error getting game", zap.String("game_id", id), zap.Error(found.UnwrapErr()))
		s.writeJSONError(w, "Failed to retrieve game", http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, newGameResponse(found.Unwrap()))
}

// handleDeleteGame は指定IDのゲームを削除するハンドラーです。
func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("game_id")

	deleted := s.deleteGame.Execute(r.Context(), id)
	if deleted.IsErr() {
		s.logger.Error("Error deleting game", zap.String("game_id", id), zap.Error(deleted.UnwrapErr()))
		s.writeJSONError(w, "Failed to delete game", http.StatusInternalServerError)
		return
	}

	s.refreshGames(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// refreshGames は変更後にストアを再読み込みし、購読者に通知します。
func (s *Server) refreshGames(ctx context.Context) {
	if err := s.games.FetchGames(ctx); err != nil {
		s.logger.Error("Error refreshing games", zap.Error(err))
	}
}

// handleGameEvents はストアのコミットごとにスナップショットをServer-Sent Eventsで送信します。
func (s *Server) handleGameEvents(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	changed := make(chan struct{}, 1)
	unsubscribe := s.games.Subscribe(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	var last *state.GamesListState
	for {
		list := s.games.GetGamesList()
		if list != last {
			data, err := json.Marshal(newGamesListResponse(list))
			if err != nil {
				s.logger.Error("Error encoding games event", zap.Error(err))
				return
			}
			if _, err := fmt.Fprintf(w, "event: games\ndata: %s\n\n", data); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				s.logger.Warn("Streaming not supported", zap.Error(err))
				return
			}
			last = list
		}

		select {
		case <-r.Context().Done():
			return
		case <-changed:
		}
	}
}

// handleWorkerStatus はオフラインワーカーの状態を返すハンドラーです。
func (s *Server) handleWorkerStatus(w http.ResponseWriter, r *http.Request) {
	if s.worker == nil {
		s.writeJSONError(w, "Offline worker is disabled", http.StatusServiceUnavailable)
		return
	}
	s.writeJSON(w, http.StatusOK, s.worker.Status())
}

// handlePostWorkerMessage はリクエストボディをワーカーのメッセージとして配送するハンドラーです。
func (s *Server) handlePostWorkerMessage(w http.ResponseWriter, r *http.Request) {
	if s.worker == nil {
		s.writeJSONError(w, "Offline worker is disabled", http.StatusServiceUnavailable)
		return
	}

	var message any
	if err := json.NewDecoder(r.Body).Decode(&message); err != nil {
		s.writeJSONError(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if err := s.worker.PostMessage(r.Context(), message); err != nil {
		if errors.Is(err, offline.ErrInvalidState) {
			s.writeJSONError(w, err.Error(), http.StatusConflict)
			return
		}
		s.logger.Error("Error delivering worker message", zap.Error(err))
		s.writeJSONError(w, "Failed to deliver message", http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusAccepted, s.worker.Status())
}

// GetGraphParams represents parameters for getting a graph.
type GetGraphParams struct {
	DateRange *model.DateRange
	Platform  string
	Status    *model.Status
}

// NewGetGraphParams creates parameters for graph generation from HTTP request.
func NewGetGraphParams(r *http.Request) (*GetGraphParams, error) {
	query := r.URL.Query()

	dateRange, err := model.NewDateRange(query.Get("from"), query.Get("to"))
	if err != nil {
		return nil, err
	}

	params := &GetGraphParams{
		DateRange: dateRange,
		Platform:  strings.TrimSpace(query.Get("platform")),
	}
	if raw := query.Get("status"); raw != "" {
		status := model.NewStatus(raw)
		if status.IsErr() {
			return nil, status.UnwrapErr()
		}
		st := status.Unwrap()
		params.Status = &st
	}
	return params, nil
}

// handleGetGraph は購入日のヒートマップグラフを生成・返却するハンドラーです。
func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	// パラメータを検証
	params, err := NewGetGraphParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	found, err := s.getGames.Execute(r.Context())
	if err == nil && found.IsErr() {
		err = found.UnwrapErr()
	}
	if err != nil {
		s.logger.Error("Error retrieving games", zap.Error(err))
		http.Error(w, "Failed to retrieve games", http.StatusInternalServerError)
		return
	}

	// 期間内の購入日を収集
	var dates []time.Time
	for _, g := range found.Unwrap() {
		if params.Platform != "" && !strings.EqualFold(g.Platform(), params.Platform) {
			continue
		}
		if params.Status != nil && g.Status() != params.Status.Type() {
			continue
		}
		if d := g.PurchaseDate(); d != nil && params.DateRange.Contains(d.Local()) {
			dates = append(dates, d.Local())
		}
	}

	from := params.DateRange.From()
	to := params.DateRange.To()
	data := heatmap.CountByDay(dates, from, to)

	opts := heatmap.DefaultOptions()
	opts.Title = "Purchases"
	opts.From = from
	opts.To = to
	if params.Platform != "" {
		opts.Filters = append(opts.Filters, "platform: "+params.Platform)
	}
	if params.Status != nil {
		opts.Filters = append(opts.Filters, "status: "+params.Status.String())
	}

	svg := heatmap.GenerateYearlyHeatmapSVG(data, opts)

	// レスポンスの返却
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write([]byte(svg))
}

// Run はサーバーを起動し、ctxがキャンセルされるとグレースフルに停止します。
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server starting", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
