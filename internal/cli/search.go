package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/adboardapp/adboard/internal/listing"
	"github.com/adboardapp/adboard/internal/models"
	"github.com/adboardapp/adboard/internal/repositories/ads"
)

// Search prompts for feed filters and prints one page of results. Every
// prompt accepts an empty answer meaning "no constraint".
func (a *App) Search(ctx context.Context) {

	category, err := GetSimpleText(a.reader,
		fmt.Sprintf("Category (%s, empty for all)", strings.Join(models.Categories, ", ")), os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	minPrice, err := GetSimpleText(a.reader, "Min price (empty for none)", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	maxPrice, err := GetSimpleText(a.reader, "Max price (empty for none)", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	sortBy, err := GetSimpleText(a.reader, "Sort: newest / cheapest (default newest)", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	text, err := GetSimpleText(a.reader, "Search text (empty for none)", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	spec := listing.FilterSpec{
		Category:   category,
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
		SortBy:     ads.SortNewest,
		SearchText: text,
	}
	if sortBy == "cheapest" {
		spec.SortBy = ads.SortCheapest
	}

	results, err := a.engine.Search(ctx, spec)
	if err != nil {
		log.Printf("search failed: %v", err)
		return
	}

	a.lastList = results

	if len(results) == 0 {
		fmt.Println("No ads found")
		return
	}
	for i, ad := range results {
		printAd(i+1, &ad)
	}
}

func printAd(n int, ad *models.Ad) {
	price := "negotiable"
	if ad.Price != nil {
		price = fmt.Sprintf("%.0f", *ad.Price)
	}
	status := ""
	if !ad.Active {
		status = " [inactive]"
	}
	fmt.Printf("%d. %s%s\n   %s | %s | %s | %s\n", n, ad.Title, status,
		ad.Category, ad.City, price, ad.CreatedAt.Format("2006-01-02"))
	if ad.Description != "" {
		fmt.Printf("   %s\n", ad.Description)
	}
}
