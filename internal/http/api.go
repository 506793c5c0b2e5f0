package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"teachassist/internal/apperr"
	"teachassist/internal/domain"
	"teachassist/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	auth    service.AuthService
	users   service.UserService
	courses service.CourseService
	teacher service.TeacherService
	log     *logrus.Logger
}

func NewHandler(auth service.AuthService, users service.UserService, courses service.CourseService, teacher service.TeacherService, log *logrus.Logger) *Handler {
	return &Handler{
		auth:    auth,
		users:   users,
		courses: courses,
		teacher: teacher,
		log:     log,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())
	router.Use(requestLogger(h.log))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "teaching assistance service running"})
	})

	auth := router.Group("/auth")
	{
		auth.POST("/register", h.register)
		auth.POST("/login", h.login)
		auth.GET("/check-username/:username", h.checkUsername)
		auth.GET("/check-email/:email", h.checkEmail)
		auth.GET("/me", h.currentUser)
		auth.POST("/logout", h.logout)
	}

	admin := router.Group("/admin")
	admin.POST("/login", h.adminLogin)
	protected := admin.Group("", h.adminRequired())
	{
		protected.GET("/statistics/dashboard", h.dashboard)
		protected.GET("/list", h.adminListUsers)
		protected.POST("/user/add", h.adminAddUser)
		protected.GET("/:user_id", h.adminGetUser)
		protected.PUT("/user/:user_id/updateName", h.adminUpdateName)
		protected.PUT("/user/:user_id/updateEmail", h.adminUpdateEmail)
		protected.DELETE("/delete/:user_id", h.adminDeleteUser)
	}

	users := router.Group("/users")
	{
		users.GET("/", h.listUsers)
		users.POST("/", h.createUser)
	}

	courses := router.Group("/courses")
	{
		courses.GET("/", h.listCourses)
		courses.POST("/", h.createCourse)
		courses.GET("/teacher/:teacher_id", h.listTeacherCourses)
		courses.GET("/:course_id", h.getCourse)
		courses.PUT("/:course_id", h.updateCourse)
		courses.DELETE("/:course_id", h.deleteCourse)
	}

	teacher := router.Group("/teacher")
	{
		teacher.GET("/objective/:course_id", h.getObjective)
		teacher.POST("/objective/:course_id/generate", h.generateObjective)
		teacher.POST("/objective/:course_id/save", h.saveObjective)

		teacher.GET("/syllabus/:course_id", h.getSyllabus)
		teacher.POST("/syllabus/:course_id/generate", h.generateSyllabus)
		teacher.POST("/syllabus/:course_id/save", h.saveSyllabus)

		teacher.GET("/material/:course_id", h.getMaterial)
		teacher.POST("/material/:course_id/generate", h.generateMaterial)
		teacher.POST("/material/:course_id/save", h.saveMaterial)
	}
}

// writeError maps the error taxonomy onto HTTP statuses. Internal causes
// are logged, never echoed to the client.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": apperr.Message(err, "invalid request")})
	case errors.Is(err, apperr.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": apperr.Message(err, "unauthorized")})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": apperr.Message(err, "not found")})
	default:
		h.log.WithFields(logrus.Fields{
			"request_id": requestID(c),
			"path":       c.Request.URL.Path,
		}).WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func bearerToken(c *gin.Context) string {
	const prefix = "Bearer "
	header := c.GetHeader("Authorization")
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

// pathID parses a positive int64 path parameter; on failure it writes the
// 400 response and reports false.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// adminRequired resolves the bearer token to a live account and rejects
// anything but the admin role.
func (h *Handler) adminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		user, err := h.auth.CurrentUser(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": apperr.Message(err, "unauthorized")})
			return
		}
		if user.Role != domain.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}
		c.Next()
	}
}

// --- auth ---

type registerRequest struct {
	Username string      `json:"username" binding:"required"`
	Email    string      `json:"email" binding:"required"`
	Password string      `json:"password" binding:"required"`
	Role     domain.Role `json:"role"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.auth.Register(c.Request.Context(), req.Username, req.Email, req.Password, req.Role); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "register success"})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":    result.Token,
		"userId":   result.UserID,
		"username": result.Username,
		"role":     result.Role,
		"message":  "login success",
	})
}

func (h *Handler) checkUsername(c *gin.Context) {
	available, err := h.auth.CheckUsernameAvailable(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": available})
}

func (h *Handler) checkEmail(c *gin.Context) {
	available, err := h.auth.CheckEmailAvailable(c.Request.Context(), c.Param("email"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": available})
}

func (h *Handler) currentUser(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}

	user, err := h.auth.CurrentUser(c.Request.Context(), token)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
	})
}

// logout is stateless: tokens stay valid until they expire, the client
// just discards its copy.
func (h *Handler) logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "logout success"})
}

// --- admin ---

type adminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) adminLogin(c *gin.Context) {
	var req adminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.auth.AdminLogin(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": result.Token,
		"user": gin.H{
			"id":       result.UserID,
			"username": result.Username,
			"role":     result.Role,
		},
	})
}

func (h *Handler) dashboard(c *gin.Context) {
	stats, err := h.users.DashboardStats(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"userStats": gin.H{
			"totalUsers":   stats.TotalUsers,
			"teacherCount": stats.TeacherCount,
			"adminCount":   stats.AdminCount,
		},
		"courseStats": gin.H{
			"totalCourses":  stats.TotalCourses,
			"activeCount":   stats.ActiveCourses,
			"pendingCount":  0,
			"approvedCount": stats.ActiveCourses,
			"rejectedCount": 0,
		},
	})
}

func (h *Handler) adminListUsers(c *gin.Context) {
	h.listUsers(c)
}

type createUserRequest struct {
	Username string      `json:"username" binding:"required"`
	Email    string      `json:"email" binding:"required"`
	Password string      `json:"password" binding:"required"`
	Role     domain.Role `json:"role"`
}

func (h *Handler) adminAddUser(c *gin.Context) {
	h.createUser(c)
}

func (h *Handler) adminGetUser(c *gin.Context) {
	id, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(*user))
}

type updateNameRequest struct {
	Username string `json:"username" binding:"required"`
}

func (h *Handler) adminUpdateName(c *gin.Context) {
	id, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	var req updateNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Update(c.Request.Context(), id, service.UserUpdate{Username: &req.Username})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(*user))
}

type updateEmailRequest struct {
	Email string `json:"email" binding:"required"`
}

func (h *Handler) adminUpdateEmail(c *gin.Context) {
	id, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	var req updateEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Update(c.Request.Context(), id, service.UserUpdate{Email: &req.Email})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(*user))
}

func (h *Handler) adminDeleteUser(c *gin.Context) {
	id, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

// --- users ---

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(users[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Create(c.Request.Context(), req.Username, req.Email, req.Password, req.Role)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(*user))
}

// --- courses ---

type createCourseRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	TeacherID   int64  `json:"teacher_id" binding:"required"`
}

func (h *Handler) createCourse(c *gin.Context) {
	var req createCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	course, err := h.courses.Create(c.Request.Context(), req.Title, req.Description, req.TeacherID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, courseToResponse(*course))
}

func (h *Handler) listCourses(c *gin.Context) {
	courses, err := h.courses.ListAll(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, coursesToResponse(courses))
}

func (h *Handler) listTeacherCourses(c *gin.Context) {
	teacherID, ok := pathID(c, "teacher_id")
	if !ok {
		return
	}

	courses, err := h.courses.ListByTeacher(c.Request.Context(), teacherID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, coursesToResponse(courses))
}

func (h *Handler) getCourse(c *gin.Context) {
	id, ok := pathID(c, "course_id")
	if !ok {
		return
	}

	course, err := h.courses.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, courseToResponse(*course))
}

type updateCourseRequest struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	Status      *domain.CourseStatus `json:"status"`
}

func (h *Handler) updateCourse(c *gin.Context) {
	id, ok := pathID(c, "course_id")
	if !ok {
		return
	}
	var req updateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	course, err := h.courses.Update(c.Request.Context(), id, service.CourseUpdate{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, courseToResponse(*course))
}

func (h *Handler) deleteCourse(c *gin.Context) {
	id, ok := pathID(c, "course_id")
	if !ok {
		return
	}

	if err := h.courses.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// --- teacher content ---

type generateRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

type saveObjectiveRequest struct {
	CourseContent  string `json:"course_content"`
	TeachingTarget string `json:"teaching_target"`
}

type saveDocumentRequest struct {
	Content string `json:"content"`
}

func (h *Handler) getObjective(c *gin.Context) {
	courseID, ok := pathID(c, "course_id")
	if !ok {
		return
	}

	obj, err := h.teacher.GetObjective(c.Request.Context(), courseID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, objectiveToResponse(obj))
}

func (h *Handler) generateObjective(c *gin.Context) {
	courseID, ok := pathID(c, "course_id")
	if !ok {
		return
	}
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	obj, err := h.teacher.GenerateObjective(c.Request.Context(), courseID, req.Prompt)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, objectiveToResponse(obj))
}

func (h *Handler) saveObjective(c *gin.Context) {
	courseID, ok := pathID(c, "course_id")
	if !ok {
		return
	}
	var req saveObjectiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	obj, err := h.teacher.SaveObjective(c.Request.Context(), courseID, req.CourseContent, req.TeachingTarget)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, objectiveToResponse(obj))
}

func (h *Handler) getSyllabus(c *gin.Context) {
	courseID, ok := pathID(c, "course_id")
	if !ok {
		return
	}

	syl, err := h.teacher.GetSyllabus(c.Request.Context(), courseID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, documentToResponse(syl.ID, syl.CourseID, syl.Content, syl.CreatedAt, syl.UpdatedAt))
}

func (h *Handler) generateSyllabus(c *gin.Context) {
	courseID, ok := pathID(c, "course_id")
	if !ok {
		return
	}
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	syl, err := h.teacher.GenerateSyllabus(c.Request.Context(), courseID, req.Prompt)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, documentToResponse(syl.ID, syl.CourseID, syl.Content, syl.CreatedAt, syl.UpdatedAt))
}

func (h *Handler) saveSyllabus(c *gin.Context) {
	courseID, ok := pathID(c, "course_id")
	if !ok {
		return
	}
	var req saveDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	syl, err := h.teacher.SaveSyllabus(c.Request.Context(), courseID, req.Content)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, documentToResponse(syl.ID, syl.CourseID, syl.Content, syl.CreatedAt, syl.UpdatedAt))
}

func (h *Handler) getMaterial(c *gin.Context) {
	courseID, ok := pathID(c, "course_id")
	if !ok {
		return
	}

	mat, err := h.teacher.GetMaterial(c.Request.Context(), courseID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, documentToResponse(mat.ID, mat.CourseID, mat.Content, mat.CreatedAt, mat.UpdatedAt))
}

func (h *Handler) generateMaterial(c *gin.Context) {
	courseID, ok := pathID(c, "course_id")
	if !ok {
		return
	}
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mat, err := h.teacher.GenerateMaterial(c.Request.Context(), courseID, req.Prompt)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, documentToResponse(mat.ID, mat.CourseID, mat.Content, mat.CreatedAt, mat.UpdatedAt))
}

func (h *Handler) saveMaterial(c *gin.Context) {
	courseID, ok := pathID(c, "course_id")
	if !ok {
		return
	}
	var req saveDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mat, err := h.teacher.SaveMaterial(c.Request.Context(), courseID, req.Content)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, documentToResponse(mat.ID, mat.CourseID, mat.Content, mat.CreatedAt, mat.UpdatedAt))
}

// --- responses ---

type UserResponse struct {
	ID        int64       `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	Status    string      `json:"status"`
	CreatedAt string      `json:"created_at"`
	UpdatedAt string      `json:"updated_at"`
}

func userToResponse(user domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		Status:    user.Status,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
		UpdatedAt: user.UpdatedAt.Format(time.RFC3339),
	}
}

type CourseResponse struct {
	ID          int64               `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	TeacherID   int64               `json:"teacher_id"`
	Status      domain.CourseStatus `json:"status"`
	CreatedAt   string              `json:"created_at"`
	UpdatedAt   string              `json:"updated_at"`
}

func courseToResponse(course domain.Course) CourseResponse {
	return CourseResponse{
		ID:          course.ID,
		Title:       course.Title,
		Description: course.Description,
		TeacherID:   course.TeacherID,
		Status:      course.Status,
		CreatedAt:   course.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   course.UpdatedAt.Format(time.RFC3339),
	}
}

func coursesToResponse(courses []domain.Course) []CourseResponse {
	resp := make([]CourseResponse, len(courses))
	for i := range courses {
		resp[i] = courseToResponse(courses[i])
	}
	return resp
}

type ObjectiveResponse struct {
	ID             int64   `json:"id"`
	CourseID       int64   `json:"course_id"`
	CourseContent  string  `json:"course_content"`
	TeachingTarget string  `json:"teaching_target"`
	CreatedAt      *string `json:"created_at,omitempty"`
	UpdatedAt      *string `json:"updated_at,omitempty"`
}

func objectiveToResponse(obj *domain.CourseObjective) ObjectiveResponse {
	resp := ObjectiveResponse{
		ID:             obj.ID,
		CourseID:       obj.CourseID,
		CourseContent:  obj.CourseContent,
		TeachingTarget: obj.TeachingTarget,
	}
	if !obj.CreatedAt.IsZero() {
		v := obj.CreatedAt.Format(time.RFC3339)
		resp.CreatedAt = &v
	}
	if !obj.UpdatedAt.IsZero() {
		v := obj.UpdatedAt.Format(time.RFC3339)
		resp.UpdatedAt = &v
	}
	return resp
}

type DocumentResponse struct {
	ID        int64   `json:"id"`
	CourseID  int64   `json:"course_id"`
	Content   string  `json:"content"`
	CreatedAt *string `json:"created_at,omitempty"`
	UpdatedAt *string `json:"updated_at,omitempty"`
}

func documentToResponse(id, courseID int64, content string, createdAt, updatedAt time.Time) DocumentResponse {
	resp := DocumentResponse{
		ID:       id,
		CourseID: courseID,
		Content:  content,
	}
	if !createdAt.IsZero() {
		v := createdAt.Format(time.RFC3339)
		resp.CreatedAt = &v
	}
	if !updatedAt.IsZero() {
		v := updatedAt.Format(time.RFC3339)
		resp.UpdatedAt = &v
	}
	return resp
}
