package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/adboardapp/adboard/internal/common"
	"github.com/adboardapp/adboard/internal/models"
)

// Create prompts for a new ad draft and submits it. Validation failures
// are reported per field without touching the store.
func (a *App) Create(ctx context.Context) {

	user := a.session.Current()
	if user == nil {
		fmt.Println("Not logged in")
		return
	}

	title, err := GetSimpleText(a.reader, "Title", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	description, err := GetSimpleText(a.reader, "Description", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	category, err := GetSimpleText(a.reader,
		fmt.Sprintf("Category (%s)", strings.Join(models.Categories, ", ")), os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	price, err := GetSimpleText(a.reader, "Price (empty for negotiable)", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	city, err := GetSimpleText(a.reader, "City", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	imgs, err := GetLines(a.reader, "Image URLs, one per line", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	draft := models.AdDraft{
		Title:       title,
		Description: description,
		Category:    category,
		Price:       price,
		City:        city,
		Images:      imgs,
	}

	ad, err := a.adSvc.Create(ctx, user, draft)
	if err != nil {
		if ve, ok := common.AsValidation(err); ok {
			fmt.Printf("%s: %s\n", ve.Field, ve.Msg)
			return
		}
		log.Printf("could not create ad: %v", err)
		return
	}

	fmt.Printf("Created ad %q (%s)\n", ad.Title, ad.ID)
}

// UploadURL requests a presigned image upload slot. The user PUTs the file
// to the upload URL and pastes the public URL into the ad form.
func (a *App) UploadURL(ctx context.Context) {
	uploadURL, publicURL, err := a.images.GetUploadURL(ctx)
	if err != nil {
		log.Printf("could not get upload URL: %v", err)
		return
	}
	fmt.Println("Upload (HTTP PUT) to:", uploadURL)
	fmt.Println("Public URL after upload:", publicURL)
}
