package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dulcerialilis/lilis-api/internal/application/dto"
	"github.com/dulcerialilis/lilis-api/internal/application/listing"
	"github.com/dulcerialilis/lilis-api/internal/application/ports"
	"github.com/dulcerialilis/lilis-api/internal/domain"
	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
	"github.com/dulcerialilis/lilis-api/internal/domain/repository"
	"github.com/dulcerialilis/lilis-api/pkg/logger"
	"github.com/dulcerialilis/lilis-api/pkg/rut"
)

// SupplierListOptions reglas del listado de proveedores.
var SupplierListOptions = listing.Options{
	PerPageAllowed: []int{10, 25, 50, 100},
	PerPageDefault: 10,
	SortFields:     []string{"rut", "razon_social", "ciudad", "estado", "created_at"},
	DefaultSort:    "razon_social",
}

// SupplierExportHeaders columnas del .xlsx de proveedores.
var SupplierExportHeaders = []string{
	"RUT/NIF", "Razón Social", "Nombre Fantasía", "Email", "Teléfono", "Ciudad", "País",
	"Condiciones Pago", "Moneda", "Estado", "Fecha Creación",
}

// DefaultCurrency moneda por defecto de un proveedor.
const DefaultCurrency = "CLP"

// SupplierUseCase casos de uso de proveedores.
type SupplierUseCase struct {
	repo   repository.SupplierRepository
	sheets ports.SpreadsheetWriter
	log    *logger.Logger
	now    func() time.Time
}

// NewSupplierUseCase construye el caso de uso.
func NewSupplierUseCase(repo repository.SupplierRepository, sheets ports.SpreadsheetWriter, log *logger.Logger) *SupplierUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &SupplierUseCase{repo: repo, sheets: sheets, log: log.Component("suppliers"), now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *SupplierUseCase) WithClock(now func() time.Time) *SupplierUseCase {
	uc.now = now
	return uc
}

// applySupplier copia la entrada normalizada sobre el proveedor.
func applySupplier(s *entity.Supplier, in dto.SupplierRequest) error {
	s.RutNif = strings.ToUpper(strings.TrimSpace(in.RutNif))
	s.LegalName = strings.TrimSpace(in.LegalName)
	s.TradeName = strings.TrimSpace(in.TradeName)
	s.Email = strings.ToLower(strings.TrimSpace(in.Email))
	s.Phone = in.Phone
	s.Website = in.Website
	s.Address = in.Address
	s.City = in.City
	s.Country = in.Country
	s.PaymentTerms = in.PaymentTerms
	s.PaymentTermsOther = strings.TrimSpace(in.PaymentTermsOther)
	s.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	s.ContactName = in.ContactName
	s.ContactEmail = in.ContactEmail
	s.ContactPhone = in.ContactPhone
	s.Notes = in.Notes

	if s.RutNif == "" {
		return domain.Invalid("rut_nif", "es obligatorio")
	}
	if isChile(s.Country) {
		formatted, err := rut.Normalize(s.RutNif)
		if err != nil {
			return domain.Invalid("rut_nif", "RUT inválido: "+strings.TrimPrefix(err.Error(), "rut: "))
		}
		s.RutNif = formatted
	}
	if s.LegalName == "" {
		return domain.Invalid("legal_name", "es obligatorio")
	}
	if !entity.IsPaymentTerms(s.PaymentTerms) {
		return domain.Invalid("payment_terms", fmt.Sprintf("valor no permitido '%s'", s.PaymentTerms))
	}
	if s.PaymentTerms == entity.PaymentOther && s.PaymentTermsOther == "" {
		return domain.Invalid("payment_terms_other", "es obligatorio cuando la condición de pago es OTRO")
	}
	if s.PaymentTerms != entity.PaymentOther {
		s.PaymentTermsOther = ""
	}
	if s.Currency == "" {
		s.Currency = DefaultCurrency
	}
	return nil
}

// isChile: proveedores nacionales (país vacío o Chile) se identifican con RUT; el resto con NIF libre.
func isChile(country string) bool {
	c := strings.ToLower(listing.Fold(country))
	return c == "" || c == "chile" || c == "cl"
}

// Create registra un proveedor ACTIVO. rut_nif es único.
func (uc *SupplierUseCase) Create(ctx context.Context, in dto.SupplierRequest) (*dto.SupplierResponse, error) {
	now := uc.now()
	s := &entity.Supplier{ID: uuid.New().String(), Status: entity.SupplierStatusActive, CreatedAt: now, UpdatedAt: now}
	if err := applySupplier(s, in); err != nil {
		return nil, err
	}
	dup, err := uc.repo.GetByRut(ctx, s.RutNif)
	if err != nil {
		return nil, err
	}
	if dup != nil {
		return nil, fmt.Errorf("%w: rut %s", domain.ErrDuplicate, s.RutNif)
	}
	if err := uc.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	uc.log.Info().Str("supplier_id", s.ID).Str("rut", s.RutNif).Msg("proveedor creado")
	return ToSupplierResponse(s), nil
}

// Get obtiene un proveedor.
func (uc *SupplierUseCase) Get(ctx context.Context, id string) (*dto.SupplierResponse, error) {
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return ToSupplierResponse(s), nil
}

// Update reemplaza los datos del proveedor manteniendo estado y fechas de alta.
func (uc *SupplierUseCase) Update(ctx context.Context, id string, in dto.SupplierRequest) (*dto.SupplierResponse, error) {
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	if err := applySupplier(s, in); err != nil {
		return nil, err
	}
	dup, err := uc.repo.GetByRut(ctx, s.RutNif)
	if err != nil {
		return nil, err
	}
	if dup != nil && dup.ID != s.ID {
		return nil, fmt.Errorf("%w: rut %s", domain.ErrDuplicate, s.RutNif)
	}
	s.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, s); err != nil {
		return nil, err
	}
	return ToSupplierResponse(s), nil
}

// ChangeStatus ACTIVO <-> BLOQUEADO.
func (uc *SupplierUseCase) ChangeStatus(ctx context.Context, id, status string) (*dto.SupplierResponse, error) {
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	if err := entity.CheckSupplierTransition(s.Status, status); err != nil {
		return nil, err
	}
	if err := uc.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	uc.log.Info().Str("supplier_id", id).Str("to", status).Msg("estado de proveedor actualizado")
	return uc.Get(ctx, id)
}

// Block baja lógica: el proveedor queda BLOQUEADO. Idempotente.
func (uc *SupplierUseCase) Block(ctx context.Context, id string) error {
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if s == nil {
		return domain.ErrNotFound
	}
	if s.Status == entity.SupplierStatusBlocked {
		return nil
	}
	_, err = uc.ChangeStatus(ctx, id, entity.SupplierStatusBlocked)
	return err
}

func (uc *SupplierUseCase) filter(p listing.Params, f dto.SupplierFilterRequest) repository.SupplierFilter {
	out := repository.SupplierFilter{
		Search:  p.Search,
		Country: strings.TrimSpace(f.Country),
		Sort:    p.Sort,
		Page:    p.Window(),
	}
	if entity.IsSupplierStatus(f.Status) {
		out.Status = f.Status
	}
	return out
}

// List listado paginado con búsqueda por rut, razón social, fantasía y email.
func (uc *SupplierUseCase) List(ctx context.Context, q listing.Query, f dto.SupplierFilterRequest) (listing.Result[dto.SupplierResponse], error) {
	p := listing.Parse(q, SupplierListOptions)
	items, total, err := uc.repo.List(ctx, uc.filter(p, f))
	if err != nil {
		return listing.Result[dto.SupplierResponse]{}, err
	}
	out := make([]dto.SupplierResponse, 0, len(items))
	for _, s := range items {
		out = append(out, *ToSupplierResponse(s))
	}
	return listing.NewResult(out, total, p), nil
}

// Search autocompletado de proveedores activos.
func (uc *SupplierUseCase) Search(ctx context.Context, term string) ([]dto.LookupItem, error) {
	items, err := uc.repo.Search(ctx, listing.Fold(term), 20)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LookupItem, 0, len(items))
	for _, s := range items {
		out = append(out, dto.LookupItem{ID: s.ID, Code: s.RutNif, Label: s.LegalName})
	}
	return out, nil
}

// Export .xlsx con los filtros del listado.
func (uc *SupplierUseCase) Export(ctx context.Context, q listing.Query, f dto.SupplierFilterRequest) ([]byte, string, error) {
	p := listing.Parse(q, SupplierListOptions)
	filter := uc.filter(p, f)
	filter.Page = repository.Page{}
	items, _, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, "", err
	}
	rows := make([][]any, 0, len(items))
	for _, s := range items {
		terms := s.PaymentTerms
		if s.PaymentTerms == entity.PaymentOther {
			terms = s.PaymentTermsOther
		}
		rows = append(rows, []any{
			s.RutNif, s.LegalName, s.TradeName, s.Email, s.Phone, s.City, s.Country,
			terms, s.Currency, s.Status, s.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	data, err := uc.sheets.Write(ports.Table{SheetName: "Proveedores", Headers: SupplierExportHeaders, Rows: rows})
	if err != nil {
		return nil, "", fmt.Errorf("export proveedores: %w", err)
	}
	return data, "proveedores_" + uc.now().Format("20060102_150405") + ".xlsx", nil
}

// ToSupplierResponse convierte la entidad en DTO.
func ToSupplierResponse(s *entity.Supplier) *dto.SupplierResponse {
	return &dto.SupplierResponse{
		ID:                s.ID,
		RutNif:            s.RutNif,
		LegalName:         s.LegalName,
		TradeName:         s.TradeName,
		Email:             s.Email,
		Phone:             s.Phone,
		Website:           s.Website,
		Address:           s.Address,
		City:              s.City,
		Country:           s.Country,
		PaymentTerms:      s.PaymentTerms,
		PaymentTermsOther: s.PaymentTermsOther,
		Currency:          s.Currency,
		ContactName:       s.ContactName,
		ContactEmail:      s.ContactEmail,
		ContactPhone:      s.ContactPhone,
		Notes:             s.Notes,
		Status:            s.Status,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}
