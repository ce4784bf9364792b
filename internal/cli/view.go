package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/adboardapp/adboard/internal/common"
)

// View prints the full detail of an ad from the last printed listing:
// description, images, creation date, and the seller's name and phone.
func (a *App) View(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: view <n>")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(a.lastList) {
		fmt.Println("No such ad number, run 'search' or 'myads' first")
		return
	}

	det, err := a.detail.Get(ctx, a.lastList[n-1].ID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			fmt.Println("Ad not found or no longer active")
			return
		}
		log.Printf("could not load ad: %v", err)
		return
	}

	ad := det.Ad
	price := "negotiable"
	if ad.Price != nil {
		price = fmt.Sprintf("%.0f", *ad.Price)
	}

	fmt.Printf("%s\n%s | %s | %s | %s\n", ad.Title,
		ad.Category, ad.City, price, ad.CreatedAt.Format("2006-01-02 15:04"))
	if ad.Description != "" {
		fmt.Println(ad.Description)
	}
	for _, img := range ad.Images {
		fmt.Println("  image:", img)
	}

	if det.Seller != nil {
		fmt.Printf("Seller: %s (%s)\n", det.Seller.Name, det.Seller.Phone)
	} else {
		fmt.Println("Seller: unknown")
	}
}
