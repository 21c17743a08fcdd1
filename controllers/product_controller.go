package controllers

import (
	"net/http"

	"github.com/Company-KERL/Kerl-backend/models"
	"github.com/Company-KERL/Kerl-backend/services"
	"github.com/gin-gonic/gin"
)

// ProductController handles catalog requests.
type ProductController struct {
	productService services.ProductService
}

func NewProductController(productService services.ProductService) *ProductController {
	return &ProductController{productService: productService}
}

// CreateProduct handles POST /products.
func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if !bindJSON(c, &req, "All fields are required") {
		return
	}

	product, err := pc.productService.Create(c.Request.Context(), &req)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Product added successfully", "product": product})
}

// GetProducts handles GET /products.
func (pc *ProductController) GetProducts(c *gin.Context) {
	products, err := pc.productService.List(c.Request.Context())
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Products retrieved successfully", "products": products})
}

// GetProduct handles GET /products/:id.
func (pc *ProductController) GetProduct(c *gin.Context) {
	product, err := pc.productService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product retrieved successfully", "product": product})
}

// UpdateProduct handles PUT /products/:id.
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	var req models.UpdateProductRequest
	if !bindJSON(c, &req, "Invalid request body") {
		return
	}

	product, err := pc.productService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully", "product": product})
}

// DeleteProduct handles DELETE /products/:id.
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	if err := pc.productService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// PresignImageUpload handles POST /products/:id/images/presign.
func (pc *ProductController) PresignImageUpload(c *gin.Context) {
	var req models.PresignImageRequest
	if !bindJSON(c, &req, "filename and contentType are required") {
		return
	}

	upload, err := pc.productService.PresignImageUpload(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Upload URL generated", "upload": upload})
}
