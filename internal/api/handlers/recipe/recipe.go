package recipe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	recipeService "pantry-chef/internal/core/recipe"
	"pantry-chef/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Generator 依食材產生食譜
type Generator interface {
	Generate(ctx context.Context, ingredients []string) (*recipeService.Result, error)
}

// Handler 食譜路由
type Handler struct {
	generator Generator
}

// NewHandler 創建食譜處理器
func NewHandler(generator Generator) *Handler {
	return &Handler{generator: generator}
}

// ingredientEntry 接受 {"name": "..."} 或直接字串
type ingredientEntry struct {
	Name string
}

func (e *ingredientEntry) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		e.Name = s
		return nil
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	e.Name = obj.Name
	return nil
}

// parseIngredients 取出 ingredients 陣列；缺少、不是陣列或為空時回傳錯誤
func parseIngredients(body []byte) ([]string, error) {
	var req map[string]json.RawMessage
	if err := common.ParseJSONBytes(body, &req); err != nil {
		return nil, fmt.Errorf("invalid JSON body")
	}

	raw, ok := req["ingredients"]
	if !ok {
		return nil, fmt.Errorf("ingredients is required")
	}

	var entries []ingredientEntry
	if err := json.Unmarshal(raw, &entries); err != nil || entries == nil {
		return nil, fmt.Errorf("ingredients must be an array")
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("ingredients must not be empty")
	}

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names, nil
}

// HandleGenerate POST /recipes/generate
func (h *Handler) HandleGenerate(c *gin.Context) {
	reqID := requestid.Get(c)

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, common.ErrInvalidRequest.Wrap(err).Response())
		return
	}

	names, err := parseIngredients(body)
	if err != nil {
		common.LogWarn("Invalid recipe request", zap.Error(err), zap.String("request_id", reqID))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": common.ErrCodeInvalidRequest})
		return
	}

	result, err := h.generator.Generate(c.Request.Context(), names)
	if err != nil {
		if errors.Is(err, recipeService.ErrNoIngredients) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": common.ErrCodeInvalidRequest})
			return
		}
		common.LogError("Recipe generation failed", zap.Error(err), zap.String("request_id", reqID))
		ce := common.AsCustomError(err)
		c.JSON(ce.Status, ce.Response())
		return
	}

	common.LogInfo("Recipes generated",
		zap.String("request_id", reqID),
		zap.Int("recipes", len(result.Recipes)),
		zap.Int("attempts", result.Attempts),
		zap.Bool("fallback", result.UsedQuery == nil),
	)
	c.JSON(http.StatusOK, result)
}

// HandleList GET /recipes 內建食譜
func (h *Handler) HandleList(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"recipes": recipeService.Catalog()})
}
