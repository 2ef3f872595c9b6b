package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-topup-store/internal/database"
	"go-topup-store/internal/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// RunAgent answers an admin's back-office question with function calling
// over the store's data: catalog, revenue, orders and user balances.
func RunAgent(userMessage string, apiKey string) (string, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel("gemini-2.0-flash-001")

	today := time.Now().Format("2006-01-02")

	systemPrompt := fmt.Sprintf(`SYSTEM: Today is %s. You are the back-office assistant of a digital top-up store.

	RULES:
	1. CATALOG: If the admin asks about a service, its price or whether it is active, call 'check_catalog' and read the JSON to answer. Do NOT say you cannot see prices.
	2. SALES: If the admin asks about revenue or how many orders were completed, call 'get_sales_report' with a date range.
	3. ORDERS: If the admin asks about a specific order ("what happened to order 95"), call 'lookup_order' with that id.
	4. USERS: If the admin asks about a customer's wallet, call 'check_user_balance' with the username.

	USER: %s`, today, userMessage)

	model.Tools = []*genai.Tool{
		{
			FunctionDeclarations: []*genai.FunctionDeclaration{
				{
					Name:        "check_catalog",
					Description: "Get the full service catalog. Use this to find ANY service details like ID, Name, Price or Active flag.",
				},
				{
					Name:        "get_sales_report",
					Description: "Get completed-order revenue for a date range.",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"start_date": {Type: genai.TypeString, Description: "Start date (YYYY-MM-DD)"},
							"end_date":   {Type: genai.TypeString, Description: "End date (YYYY-MM-DD)"},
						},
						Required: []string{"start_date", "end_date"},
					},
				},
				{
					Name:        "lookup_order",
					Description: "Get one order's status, price and rejection reason by its ID.",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"order_id": {Type: genai.TypeInteger, Description: "ID of the order"},
						},
						Required: []string{"order_id"},
					},
				},
				{
					Name:        "check_user_balance",
					Description: "Get a customer's wallet balance and active flag by username.",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"username": {Type: genai.TypeString, Description: "The customer's username"},
						},
						Required: []string{"username"},
					},
				},
			},
		},
	}

	session := model.StartChat()

	resp, err := session.SendMessage(ctx, genai.Text(systemPrompt))
	if err != nil {
		return "", err
	}

	// --- HANDLE TOOL CALLS ---
	for _, part := range resp.Candidates[0].Content.Parts {
		if funcCall, ok := part.(genai.FunctionCall); ok {
			switch funcCall.Name {
			case "check_catalog":
				return executeCheckCatalog(ctx, session), nil
			case "get_sales_report":
				return executeSalesReport(ctx, session, funcCall), nil
			case "lookup_order":
				return executeLookupOrder(ctx, session, funcCall), nil
			case "check_user_balance":
				return executeCheckBalance(ctx, session, funcCall), nil
			}
		}
	}

	return printResponse(resp), nil
}

// --- TOOL IMPLEMENTATIONS ---

func executeCheckCatalog(ctx context.Context, session *genai.ChatSession) string {
	var services []models.Service
	database.DB.Find(&services)

	type SimpleService struct {
		ID     uint    `json:"id"`
		Name   string  `json:"name"`
		Price  float64 `json:"price"`
		Active bool    `json:"active"`
	}
	var simpleList []SimpleService
	for _, s := range services {
		simpleList = append(simpleList, SimpleService{ID: s.ID, Name: s.Name, Price: s.Price, Active: s.Active})
	}

	jsonBytes, _ := json.Marshal(simpleList)

	finalResp, err := session.SendMessage(ctx, genai.FunctionResponse{
		Name:     "check_catalog",
		Response: map[string]interface{}{"catalog": string(jsonBytes)},
	})
	if err != nil {
		return "Error reading the catalog."
	}
	return printResponse(finalResp)
}

func executeSalesReport(ctx context.Context, session *genai.ChatSession, funcCall genai.FunctionCall) string {
	args := funcCall.Args
	startStr := args["start_date"].(string)
	endStr := args["end_date"].(string)

	start, err1 := time.Parse("2006-01-02", startStr)
	end, err2 := time.Parse("2006-01-02", endStr)

	if err1 != nil || err2 != nil {
		return "Error: Dates must be in YYYY-MM-DD format."
	}
	end = end.Add(23*time.Hour + 59*time.Minute)

	report, err := database.GetSalesReport(start, end)
	if err != nil {
		return "Error calculating sales."
	}

	finalResp, _ := session.SendMessage(ctx, genai.FunctionResponse{
		Name: "get_sales_report",
		Response: map[string]interface{}{
			"revenue":     report.TotalRevenue,
			"order_count": report.TotalCount,
		},
	})
	return printResponse(finalResp)
}

func executeLookupOrder(ctx context.Context, session *genai.ChatSession, funcCall genai.FunctionCall) string {
	orderID := int(funcCall.Args["order_id"].(float64))

	var order models.Order
	result := map[string]interface{}{"found": false}
	if err := database.DB.Preload("Service").First(&order, orderID).Error; err == nil {
		result = map[string]interface{}{
			"found":            true,
			"status":           order.Status,
			"service":          order.Service.Name,
			"price":            order.Price,
			"rejection_reason": order.RejectionReason,
			"created_at":       order.CreatedAt.Format("2006-01-02 15:04"),
		}
	}

	finalResp, _ := session.SendMessage(ctx, genai.FunctionResponse{
		Name:     "lookup_order",
		Response: result,
	})
	return printResponse(finalResp)
}

func executeCheckBalance(ctx context.Context, session *genai.ChatSession, funcCall genai.FunctionCall) string {
	username := funcCall.Args["username"].(string)

	var user models.User
	result := map[string]interface{}{"found": false}
	if err := database.DB.Where("username = ?", username).First(&user).Error; err == nil {
		result = map[string]interface{}{
			"found":   true,
			"balance": user.Balance,
			"active":  user.Active,
		}
	}

	finalResp, _ := session.SendMessage(ctx, genai.FunctionResponse{
		Name:     "check_user_balance",
		Response: result,
	})
	return printResponse(finalResp)
}

func printResponse(resp *genai.GenerateContentResponse) string {
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return string(txt)
		}
	}
	return "I completed the action."
}
