package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskboard-api/internal/dto"
	"taskboard-api/internal/response"
	"taskboard-api/internal/service"
)

// AuthHandler handles signup, login and the current-user endpoint
type AuthHandler struct {
	authService service.AuthService
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Register godoc
// @Summary      회원가입
// @Description  이메일, 이름, 비밀번호로 계정을 만들고 액세스 토큰을 발급합니다
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body dto.RegisterRequest true "회원가입 요청"
// @Success      201 {object} response.SuccessResponse{data=dto.TokenResponse} "회원가입 성공"
// @Failure      400 {object} response.ErrorResponse "잘못된 요청"
// @Failure      409 {object} response.ErrorResponse "이미 가입된 이메일"
// @Failure      429 {object} response.ErrorResponse "요청 한도 초과"
// @Failure      500 {object} response.ErrorResponse "서버 에러"
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	token, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, token)
}

// Login godoc
// @Summary      로그인
// @Description  이메일과 비밀번호를 확인하고 액세스 토큰을 발급합니다
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "로그인 요청"
// @Success      200 {object} response.SuccessResponse{data=dto.TokenResponse} "로그인 성공"
// @Failure      400 {object} response.ErrorResponse "잘못된 요청"
// @Failure      401 {object} response.ErrorResponse "이메일 또는 비밀번호 불일치"
// @Failure      429 {object} response.ErrorResponse "요청 한도 초과"
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	token, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, token)
}

// Me godoc
// @Summary      내 정보 조회
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.SuccessResponse{data=dto.UserResponse} "조회 성공"
// @Failure      401 {object} response.ErrorResponse "인증 실패"
// @Failure      404 {object} response.ErrorResponse "사용자를 찾을 수 없음"
// @Router       /users/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	user, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, user)
}

// ListUsers godoc
// @Summary      사용자 목록 조회
// @Description  이메일 또는 이름으로 사용자를 검색합니다. 보드 멤버를 고를 때 사용합니다
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Param        q query string false "이메일 또는 이름 검색어"
// @Param        limit query int false "최대 개수 (1-100, 기본 50)"
// @Success      200 {object} response.SuccessResponse{data=[]dto.UserResponse} "조회 성공"
// @Failure      400 {object} response.ErrorResponse "잘못된 요청"
// @Failure      401 {object} response.ErrorResponse "인증 실패"
// @Router       /users [get]
func (h *AuthHandler) ListUsers(c *gin.Context) {
	if _, ok := callerID(c); !ok {
		return
	}

	var filters dto.UserFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid query parameters")
		return
	}

	users, err := h.authService.ListUsers(c.Request.Context(), &filters)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, users)
}
