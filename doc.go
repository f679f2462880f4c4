// Package storeassist is an embeddable retrieval-augmented shopping assistant.
//
// It fetches candidate products for a question, re-ranks them with a hashed
// bag-of-words vectorizer and cosine similarity, renders personalized
// directives from templates, and asks a text generator for the answer.
//
//	client, _ := storeassist.New(ctx,
//	    storeassist.WithRedis("localhost:6379", ""),
//	    storeassist.WithPrompt("formal", "Dear {{.Email}}", ""),
//	)
//	defer client.Close()
//
//	ans, _ := client.Ask(ctx, "Cargador Tesla", storeassist.Profile{Email: "buyer@example.com"}, "formal")
//	for _, s := range ans.Sources {
//	    fmt.Println(s.Product.Title, s.Score)
//	}
//
// Without WithGenerator the client answers with a deterministic offline
// generator, which is useful for tests and demos.
package storeassist
