package usage

import "github.com/kailas-cloud/storeassist/internal/usecase/generation"

// BudgetReader provides read-only access to generation token budget state.
type BudgetReader interface {
	Provider() string
	Daily() generation.BudgetSnapshot
	Monthly() generation.BudgetSnapshot
}
