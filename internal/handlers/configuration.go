package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/convention-booking/internal/auth"
	"github.com/gdg-garage/convention-booking/internal/models"
	"github.com/gdg-garage/convention-booking/internal/storage"
	"github.com/sirupsen/logrus"
)

type DayResponse struct {
	ID        uint   `json:"id"`
	Day       string `json:"day"`
	Arrival   bool   `json:"arrival"`
	Departure bool   `json:"departure"`
	Order     uint   `json:"order"`
}

func dayResponse(d models.Day) DayResponse {
	return DayResponse{ID: d.ID, Day: d.Label, Arrival: d.Arrival, Departure: d.Departure, Order: d.Order}
}

type AddDayInput struct {
	auth.AuthInput
	EventID uint `path:"id"`
	Body    struct {
		Day       string `json:"day" minLength:"1" maxLength:"100"`
		Arrival   bool   `json:"arrival,omitempty"`
		Departure bool   `json:"departure,omitempty"`
		Order     uint   `json:"order,omitempty"`
	}
}

type DayOutput struct {
	Body DayResponse
}

func (h *EventHandler) HandleAddDay(ctx context.Context, input *AddDayInput) (*DayOutput, error) {
	actor, err := authorize(ctx, h.authHandler, input.AuthInput)
	if err != nil {
		return nil, err
	}
	day := models.Day{
		EventID:   input.EventID,
		Label:     input.Body.Day,
		Arrival:   input.Body.Arrival,
		Departure: input.Body.Departure,
		Order:     input.Body.Order,
	}
	if err := h.store.AddDay(ctx, actor, &day); err != nil {
		return nil, storeError(err, "add day")
	}
	return &DayOutput{Body: dayResponse(day)}, nil
}

type ItemIDInput struct {
	auth.AuthInput
	ID uint `path:"id"`
}

func (h *EventHandler) HandleDeleteDay(ctx context.Context, input *ItemIDInput) (*struct{}, error) {
	actor, err := authorize(ctx, h.authHandler, input.AuthInput)
	if err != nil {
		return nil, err
	}
	if err := h.store.DeleteDay(ctx, actor, input.ID); err != nil {
		return nil, storeError(err, "delete day")
	}
	return nil, nil
}

type DisciplineResponse struct {
	ID    uint   `json:"id"`
	Code  string `json:"code"`
	Label string `json:"label"`
	Order uint   `json:"order"`
}

func disciplineResponse(d models.Discipline) DisciplineResponse {
	return DisciplineResponse{ID: d.ID, Code: d.Code, Label: d.Label, Order: d.Order}
}

type AddDisciplineInput struct {
	auth.AuthInput
	EventID uint `path:"id"`
	Body    struct {
		Code  string `json:"code" minLength:"1" maxLength:"10"`
		Label string `json:"label" minLength:"1" maxLength:"100"`
		Order uint   `json:"order,omitempty"`
	}
}

type DisciplineOutput struct {
	Body DisciplineResponse
}

func (h *EventHandler) HandleAddDiscipline(ctx context.Context, input *AddDisciplineInput) (*DisciplineOutput, error) {
	actor, err := authorize(ctx, h.authHandler, input.AuthInput)
	if err != nil {
		return nil, err
	}
	d := models.Discipline{EventID: input.EventID, Code: input.Body.Code, Label: input.Body.Label, Order: input.Body.Order}
	if err := h.store.AddDiscipline(ctx, actor, &d); err != nil {
		return nil, storeError(err, "add discipline")
	}
	return &DisciplineOutput{Body: disciplineResponse(d)}, nil
}

func (h *EventHandler) HandleDeleteDiscipline(ctx context.Context, input *ItemIDInput) (*struct{}, error) {
	actor, err := authorize(ctx, h.authHandler, input.AuthInput)
	if err != nil {
		return nil, err
	}
	if err := h.store.DeleteDiscipline(ctx, actor, input.ID); err != nil {
		return nil, storeError(err, "delete discipline")
	}
	return nil, nil
}

type PriceBody struct {
	ValidFrom  string `json:"valid_from,omitempty" format:"date"`
	ValidUntil string `json:"valid_until,omitempty" format:"date"`
	PriceDay   string `json:"price_day,omitempty" doc:"Price per attended day"`
	Price      string `json:"price,omitempty" doc:"Flat price, wins over the daily price"`
}

func (b PriceBody) toModel() (models.Price, error) {
	var p models.Price
	var err error
	if p.ValidFrom, err = parseOptionalDate("valid_from", b.ValidFrom); err != nil {
		return p, err
	}
	if p.ValidUntil, err = parseOptionalDate("valid_until", b.ValidUntil); err != nil {
		return p, err
	}
	if p.PriceDay, err = parseNullDecimal("price_day", b.PriceDay); err != nil {
		return p, err
	}
	if p.Total, err = parseNullDecimal("price", b.Price); err != nil {
		return p, err
	}
	return p, nil
}

type PriceResponse struct {
	ID uint `json:"id"`
	PriceBody
}

func priceResponse(p models.Price) PriceResponse {
	res := PriceResponse{ID: p.ID}
	res.ValidFrom = formatDate(p.ValidFrom)
	res.ValidUntil = formatDate(p.ValidUntil)
	if p.PriceDay.Valid {
		res.PriceDay = money(p.PriceDay.Decimal)
	}
	if p.Total.Valid {
		res.Price = money(p.Total.Decimal)
	}
	return res
}

type RateResponse struct {
	ID          uint            `json:"id"`
	Label       string          `json:"label"`
	DOBFrom     string          `json:"dob_from"`
	DOBTo       string          `json:"dob_to"`
	NonRider    bool            `json:"non_rider"`
	IsActive    bool            `json:"is_active"`
	Order       uint            `json:"order"`
	Disciplines []uint          `json:"disciplines"`
	Prices      []PriceResponse `json:"prices"`
}

func rateResponse(r models.Rate) RateResponse {
	res := RateResponse{
		ID:          r.ID,
		Label:       r.Label,
		DOBFrom:     formatDate(r.DOBFrom),
		DOBTo:       formatDate(r.DOBTo),
		NonRider:    r.NonRider,
		IsActive:    r.IsActive,
		Order:       r.Order,
		Disciplines: make([]uint, 0, len(r.Disciplines)),
		Prices:      make([]PriceResponse, 0, len(r.Prices)),
	}
	for _, d := range r.Disciplines {
		res.Disciplines = append(res.Disciplines, d.ID)
	}
	for _, p := range r.Prices {
		res.Prices = append(res.Prices, priceResponse(p))
	}
	return res
}

type AddRateInput struct {
	auth.AuthInput
	EventID uint `path:"id"`
	Body    struct {
		Label       string      `json:"label" minLength:"1" maxLength:"100"`
		DOBFrom     string      `json:"dob_from,omitempty" format:"date" doc:"Earliest date of birth"`
		DOBTo       string      `json:"dob_to,omitempty" format:"date" doc:"Latest date of birth"`
		NonRider    bool        `json:"non_rider,omitempty"`
		IsActive    bool        `json:"is_active,omitempty"`
		Order       uint        `json:"order,omitempty"`
		Disciplines []uint      `json:"disciplines,omitempty" doc:"Empty means all disciplines"`
		Prices      []PriceBody `json:"prices,omitempty"`
	}
}

type RateOutput struct {
	Body RateResponse
}

func (h *EventHandler) HandleAddRate(ctx context.Context, input *AddRateInput) (*RateOutput, error) {
	actor, err := authorize(ctx, h.authHandler, input.AuthInput)
	if err != nil {
		return nil, err
	}
	rate := models.Rate{
		EventID:  input.EventID,
		Label:    input.Body.Label,
		NonRider: input.Body.NonRider,
		IsActive: input.Body.IsActive,
		Order:    input.Body.Order,
	}
	if rate.DOBFrom, err = parseOptionalDate("dob_from", input.Body.DOBFrom); err != nil {
		return nil, err
	}
	if rate.DOBTo, err = parseOptionalDate("dob_to", input.Body.DOBTo); err != nil {
		return nil, err
	}
	for _, pb := range input.Body.Prices {
		p, err := pb.toModel()
		if err != nil {
			return nil, err
		}
		rate.Prices = append(rate.Prices, p)
	}
	if err := h.store.AddRate(ctx, actor, &rate, input.Body.Disciplines); err != nil {
		return nil, storeError(err, "add rate")
	}
	return &RateOutput{Body: rateResponse(rate)}, nil
}

func (h *EventHandler) HandleDeleteRate(ctx context.Context, input *ItemIDInput) (*struct{}, error) {
	actor, err := authorize(ctx, h.authHandler, input.AuthInput)
	if err != nil {
		return nil, err
	}
	if err := h.store.DeleteRate(ctx, actor, input.ID); err != nil {
		return nil, storeError(err, "delete rate")
	}
	return nil, nil
}

type AddPriceInput struct {
	auth.AuthInput
	RateID uint `path:"id"`
	Body   PriceBody
}

type PriceOutput struct {
	Body PriceResponse
}

func (h *EventHandler) HandleAddPrice(ctx context.Context, input *AddPriceInput) (*PriceOutput, error) {
	actor, err := authorize(ctx, h.authHandler, input.AuthInput)
	if err != nil {
		return nil, err
	}
	price, err := input.Body.toModel()
	if err != nil {
		return nil, err
	}
	price.RateID = input.RateID
	if err := h.store.AddPrice(ctx, actor, &price); err != nil {
		return nil, storeError(err, "add price")
	}
	return &PriceOutput{Body: priceResponse(price)}, nil
}

type VariantBody struct {
	Name  string `json:"name" minLength:"1" maxLength:"100"`
	Price string `json:"price"`
	Order uint   `json:"order,omitempty"`
}

type VariantResponse struct {
	ID uint `json:"id"`
	VariantBody
}

type ProductResponse struct {
	ID       uint              `json:"id"`
	Kind     string            `json:"kind"`
	Name     string            `json:"name"`
	Required bool              `json:"required"`
	Order    uint              `json:"order"`
	Variants []VariantResponse `json:"variants"`
}

func productResponse(p models.Product) ProductResponse {
	res := ProductResponse{
		ID:       p.ID,
		Kind:     string(p.Kind),
		Name:     p.Name,
		Required: p.Required,
		Order:    p.Order,
		Variants: make([]VariantResponse, 0, len(p.Variants)),
	}
	for _, v := range p.Variants {
		res.Variants = append(res.Variants, VariantResponse{
			ID:          v.ID,
			VariantBody: VariantBody{Name: v.Name, Price: money(v.Price), Order: v.Order},
		})
	}
	return res
}

type AddProductInput struct {
	auth.AuthInput
	EventID uint `path:"id"`
	Body    struct {
		Kind     string        `json:"kind" enum:"shirt,accommodation,meal,other"`
		Name     string        `json:"name" minLength:"1" maxLength:"100"`
		Required bool          `json:"required,omitempty"`
		Order    uint          `json:"order,omitempty"`
		Variants []VariantBody `json:"variants,omitempty"`
	}
}

type ProductOutput struct {
	Body ProductResponse
}

func (h *EventHandler) HandleAddProduct(ctx context.Context, input *AddProductInput) (*ProductOutput, error) {
	actor, err := authorize(ctx, h.authHandler, input.AuthInput)
	if err != nil {
		return nil, err
	}
	product := models.Product{
		EventID:  input.EventID,
		Kind:     models.ProductKind(input.Body.Kind),
		Name:     input.Body.Name,
		Required: input.Body.Required,
		Order:    input.Body.Order,
	}
	for _, vb := range input.Body.Variants {
		price, err := parseDecimal("variants.price", vb.Price)
		if err != nil {
			return nil, err
		}
		product.Variants = append(product.Variants, models.ProductVariant{Name: vb.Name, Price: price, Order: vb.Order})
	}
	if err := h.store.AddProduct(ctx, actor, &product); err != nil {
		return nil, storeError(err, "add product")
	}
	return &ProductOutput{Body: productResponse(product)}, nil
}

func (h *EventHandler) HandleDeleteProduct(ctx context.Context, input *ItemIDInput) (*struct{}, error) {
	actor, err := authorize(ctx, h.authHandler, input.AuthInput)
	if err != nil {
		return nil, err
	}
	if err := h.store.DeleteProduct(ctx, actor, input.ID); err != nil {
		return nil, storeError(err, "delete product")
	}
	return nil, nil
}

type DocumentResponse struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	URL    string `json:"url"`
	U18    bool   `json:"u18"`
	Upload bool   `json:"upload"`
	Order  uint   `json:"order"`
}

func (h *EventHandler) documentResponse(d models.Document) DocumentResponse {
	return DocumentResponse{ID: d.ID, Name: d.Name, URL: h.files.URL(d.File), U18: d.U18, Upload: d.Upload, Order: d.Order}
}

type AddDocumentInput struct {
	auth.AuthInput
	EventID uint `path:"id"`
	Body    struct {
		Name   string      `json:"name" minLength:"1" maxLength:"100"`
		U18    bool        `json:"u18,omitempty" doc:"Only needed by participants under 18"`
		Upload bool        `json:"upload,omitempty" doc:"Participants have to upload a signed copy"`
		Order  uint        `json:"order,omitempty"`
		File   *FileUpload `json:"file,omitempty"`
	}
}

type DocumentOutput struct {
	Body DocumentResponse
}

func (h *EventHandler) HandleAddDocument(ctx context.Context, input *AddDocumentInput) (*DocumentOutput, error) {
	actor, err := authorize(ctx, h.authHandler, input.AuthInput)
	if err != nil {
		return nil, err
	}
	doc := models.Document{
		EventID: input.EventID,
		Name:    input.Body.Name,
		U18:     input.Body.U18,
		Upload:  input.Body.Upload,
		Order:   input.Body.Order,
	}
	if f := input.Body.File; f != nil {
		doc.File = storage.UniqueKey("documents", f.Filename)
		if err := h.files.Put(ctx, doc.File, f.Data, f.ContentType); err != nil {
			logrus.WithError(err).Error("Failed to store document")
			return nil, huma.Error500InternalServerError("Failed to store document")
		}
	}
	if err := h.store.AddDocument(ctx, actor, &doc); err != nil {
		h.removeFiles(ctx, doc.File)
		return nil, storeError(err, "add document")
	}
	return &DocumentOutput{Body: h.documentResponse(doc)}, nil
}

func (h *EventHandler) HandleDeleteDocument(ctx context.Context, input *ItemIDInput) (*struct{}, error) {
	actor, err := authorize(ctx, h.authHandler, input.AuthInput)
	if err != nil {
		return nil, err
	}
	doc, attachments, err := h.store.DeleteDocument(ctx, actor, input.ID)
	if err != nil {
		return nil, storeError(err, "delete document")
	}
	keys := []string{doc.File}
	for _, a := range attachments {
		keys = append(keys, a.File)
	}
	h.removeFiles(ctx, keys...)
	return nil, nil
}

type PageResponse struct {
	ID      uint    `json:"id"`
	EventID uint    `json:"event_id"`
	Slug    string  `json:"slug"`
	Name    string  `json:"name"`
	Icon    string  `json:"icon"`
	HTML    *string `json:"html"`
	Order   uint    `json:"order"`
	Menu    bool    `json:"menu"`
}

func pageResponse(p models.WebPage) PageResponse {
	return PageResponse{ID: p.ID, EventID: p.EventID, Slug: p.Slug, Name: p.Name, Icon: p.Icon, HTML: p.HTML, Order: p.Order, Menu: p.Menu}
}

type ListPagesInput struct {
	auth.AuthInput
}

type ListPagesOutput struct {
	Body []PageResponse
}

func (h *EventHandler) HandleListPages(ctx context.Context, input *ListPagesInput) (*ListPagesOutput, error) {
	actor, err := authorize(ctx, h.authHandler, input.AuthInput)
	if err != nil {
		return nil, err
	}
	pages, err := h.store.ListWebPages(ctx, actor)
	if err != nil {
		return nil, storeError(err, "list pages")
	}
	res := &ListPagesOutput{Body: make([]PageResponse, 0, len(pages))}
	for _, p := range pages {
		res.Body = append(res.Body, pageResponse(p))
	}
	return res, nil
}

type AddPageInput struct {
	auth.AuthInput
	EventID uint `path:"id"`
	Body    struct {
		Slug  string  `json:"slug,omitempty" maxLength:"50" doc:"Defaults to home"`
		Name  string  `json:"name" minLength:"1" maxLength:"30"`
		Icon  string  `json:"icon,omitempty" maxLength:"30" doc:"Defaults to home"`
		HTML  *string `json:"html,omitempty"`
		Order uint    `json:"order,omitempty"`
		Menu  bool    `json:"menu,omitempty"`
	}
}

type PageOutput struct {
	Body PageResponse
}

func (h *EventHandler) HandleAddPage(ctx context.Context, input *AddPageInput) (*PageOutput, error) {
	actor, err := authorize(ctx, h.authHandler, input.AuthInput)
	if err != nil {
		return nil, err
	}
	page := models.WebPage{
		EventID: input.EventID,
		Slug:    input.Body.Slug,
		Name:    input.Body.Name,
		Icon:    input.Body.Icon,
		HTML:    input.Body.HTML,
		Order:   input.Body.Order,
		Menu:    input.Body.Menu,
	}
	if err := h.store.AddWebPage(ctx, actor, &page); err != nil {
		return nil, storeError(err, "add page")
	}
	return &PageOutput{Body: pageResponse(page)}, nil
}

func (h *EventHandler) HandleDeletePage(ctx context.Context, input *ItemIDInput) (*struct{}, error) {
	actor, err := authorize(ctx, h.authHandler, input.AuthInput)
	if err != nil {
		return nil, err
	}
	if err := h.store.DeleteWebPage(ctx, actor, input.ID); err != nil {
		return nil, storeError(err, "delete page")
	}
	return nil, nil
}
