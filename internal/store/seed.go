// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/qualitysolutions/qsite/internal/auth"
	"github.com/qualitysolutions/qsite/internal/model"
	"github.com/qualitysolutions/qsite/internal/util"
)

// ErrSeedProduction is returned when seeding is attempted in production.
var ErrSeedProduction = errors.New("refusing to seed a production database")

// SeedOptions controls a Seed run.
type SeedOptions struct {
	// Env is the deployment environment; "production" aborts the run.
	Env string
	// Rand drives the randomised counters. Nil uses a time-seeded source.
	Rand *rand.Rand
	// Now overrides the clock for tests.
	Now func() time.Time
}

type seedUser struct {
	email    string
	password string
	name     string
	role     model.Role
}

var seedUsers = []seedUser{
	{"admin@qualitysolutions.com", "Admin@2024", "أحمد الخليفي", model.RoleAdmin},
	{"editor@qualitysolutions.com", "Editor@2024", "محمد القحطاني", model.RoleEditor},
	{"author@qualitysolutions.com", "Author@2024", "سعيد الحربي", model.RoleAuthor},
	{"user@qualitysolutions.com", "User@2024", "خالد العتيبي", model.RoleUser},
}

type seedArticle struct {
	title    string
	slug     string
	category string
	tags     []string
}

var seedArticles = []seedArticle{
	{"أساسيات كيمياء المياه للمعالجة", "water-chemistry-basics", "SCIENCE", []string{"كيمياء", "أساسيات", "معالجة"}},
	{"تقنيات التناضح العكسي الحديثة", "modern-ro-techniques", "TECHNOLOGY", []string{"RO", "تناضح عكسي", "تحلية"}},
	{"إدارة محطات المعالجة بكفاءة", "treatment-plant-management", "PROCESS", []string{"إدارة", "تشغيل", "كفاءة"}},
	{"الاستدامة في قطاع المياه", "water-sector-sustainability", "SUSTAINABILITY", []string{"استدامة", "بيئة", "موارد"}},
	{"معايير جودة مياه الشرب العالمية", "drinking-water-standards", "SCIENCE", []string{"معايير", "جودة", "صحة"}},
}

var categorySections = map[string]string{
	"SCIENCE": `### المبادئ العلمية
1. الخصائص الكيميائية للمياه
2. التفاعلات والذوبانية
3. التوازن الكيميائي

### التطبيقات العملية
- تحليل عينات المياه
- مراقبة الجودة
- تقييم المخاطر`,
	"TECHNOLOGY": `### التقنيات المستخدمة
1. أنظمة التناضح العكسي
2. الترشيح الفائق
3. التبادل الأيوني

### معايير الأداء
- معدل الإنتاجية
- كفاءة الإزالة
- استهلاك الطاقة`,
	"PROCESS": `### مراحل التشغيل
1. المعالجة الأولية
2. المعالجة الرئيسية
3. المعالجة النهائية

### مراقبة الجودة
- نقاط التحكم
- المؤشرات الرئيسية
- التقارير الدورية`,
	"SUSTAINABILITY": `### مبادئ الاستدامة
1. كفاءة استخدام المياه
2. إعادة الاستخدام
3. تقليل النفايات

### المعايير البيئية
- اللوائح المحلية
- المعايير الدولية
- أفضل الممارسات`,
}

type seedProduct struct {
	name     string
	slug     string
	category string
	price    float64
	stock    int64
}

var seedProducts = []seedProduct{
	{"مرشح كربون نشط صناعي", "industrial-activated-carbon-filter", "مرشحات", 1250, 25},
	{"مضخة غاطسة 5 حصان", "5hp-submersible-pump", "مضخات", 3200, 12},
	{"جهاز قياس جودة المياه المتعدد", "multi-parameter-water-quality-meter", "أجهزة قياس", 4500, 8},
	{"مادة كلور حبيبات 70%", "70-chlorine-granules", "كيميائيات", 850, 50},
	{"غشاء RO 4040", "ro-membrane-4040", "أغشية", 2800, 15},
}

var seedSpecifications = model.StringMap{
	"السعة":        "20,000 لتر/ساعة",
	"ضغط العمل":    "10 بار",
	"درجة الحرارة": "5-45°م",
	"المواد":       "فولاذ مقاوم للصدأ 304",
	"الاتصالات":    "DN100 Flange",
	"الضمان":       "3 سنوات",
}

var seedFeatures = model.StringList{
	"كفاءة عالية في الإزالة",
	"تصميم متين وطويل الأمد",
	"سهولة التركيب والصيانة",
	"متوافق مع المعايير الدولية",
}

const seedComment = "مقال رائع وشامل، شكرًا للمعلومات القيمة"

// Seed replaces users, articles, products and comments with the demo data
// set. It runs in a single transaction.
func Seed(ctx context.Context, db *sql.DB, opts SeedOptions) error {
	if strings.EqualFold(opts.Env, "production") {
		return ErrSeedProduction
	}
	rng := opts.Rand
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	now := time.Now().UTC()
	if opts.Now != nil {
		now = opts.Now().UTC()
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	q := New(db).WithTx(tx)

	wipes := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"login attempts", q.DeleteAllLoginAttempts},
		{"comments", q.DeleteAllComments},
		{"articles", q.DeleteAllArticles},
		{"products", q.DeleteAllProducts},
		{"users", q.DeleteAllUsers},
	}
	for _, w := range wipes {
		if err := w.fn(ctx); err != nil {
			return fmt.Errorf("clearing %s: %w", w.name, err)
		}
	}

	users := make(map[model.Role]User, len(seedUsers))
	for _, su := range seedUsers {
		hash, err := auth.HashPassword(su.password)
		if err != nil {
			return fmt.Errorf("hashing password for %s: %w", su.email, err)
		}
		seedName := strings.ToLower(string(su.role))
		u, err := q.CreateUser(ctx, CreateUserParams{
			Email:           su.email,
			Name:            su.name,
			PasswordHash:    util.NullStringFromValue(hash),
			Role:            su.role,
			Status:          model.UserStatusActive,
			Image:           util.NullStringFromValue("https://api.dicebear.com/7.x/avataaars/svg?seed=" + seedName),
			EmailVerifiedAt: util.NullTimeFromValue(now),
			CreatedAt:       now,
			UpdatedAt:       now,
		})
		if err != nil {
			return fmt.Errorf("creating user %s: %w", su.email, err)
		}
		users[su.role] = u
	}

	author := users[model.RoleAuthor]
	var firstArticleID int64
	for i, sa := range seedArticles {
		// Stagger publication so the list order is stable.
		publishedAt := now.Add(-time.Duration(i) * time.Hour)
		id, err := q.CreateArticle(ctx, CreateArticleParams{
			Slug:           sa.slug,
			Title:          sa.title,
			Excerpt:        fmt.Sprintf("مقال متكامل عن %s يشمل المبادئ العلمية والتطبيقات العملية.", sa.title),
			Content:        articleContent(sa),
			Category:       sa.category,
			Tags:           sa.tags,
			Status:         model.ArticleStatusPublished,
			Published:      true,
			PublishedAt:    util.NullTimeFromValue(publishedAt),
			Views:          int64(rng.IntN(1000) + 100),
			ReadingTime:    int64(rng.IntN(10) + 5),
			FeaturedImage:  util.NullStringFromValue(fmt.Sprintf("https://picsum.photos/seed/%s/800/400", sa.slug)),
			SeoTitle:       util.NullStringFromValue(sa.title),
			SeoDescription: util.NullStringFromValue(fmt.Sprintf("دليل شامل عن %s - Quality Solutions", sa.title)),
			AuthorID:       author.ID,
			CreatedAt:      publishedAt,
			UpdatedAt:      publishedAt,
		})
		if err != nil {
			return fmt.Errorf("creating article %s: %w", sa.slug, err)
		}
		if i == 0 {
			firstArticleID = id
		}
	}

	for i, sp := range seedProducts {
		createdAt := now.Add(-time.Duration(i) * time.Minute)
		images := make(model.StringList, 0, 3)
		for n := 1; n <= 3; n++ {
			images = append(images, fmt.Sprintf("https://picsum.photos/seed/%s-%d/800/600", sp.slug, n))
		}
		_, err := q.CreateProduct(ctx, CreateProductParams{
			Slug:             sp.slug,
			Sku:              util.SKUCode(sp.category, i+1),
			Name:             sp.name,
			Description:      fmt.Sprintf("منتج %s عالي الجودة مصمم للاستخدام في تطبيقات معالجة المياه الصناعية والتجارية.", sp.name),
			ShortDescription: sp.name + " - حل تقني متقدم",
			Price:            sp.price,
			OriginalPrice:    util.NullFloat64FromValue(math.Round(sp.price*1.2*100) / 100),
			Category:         sp.category,
			Subcategory:      "معدات أساسية",
			Images:           images,
			Specifications:   seedSpecifications,
			Features:         seedFeatures,
			Stock:            sp.stock,
			Status:           model.ProductStatusActive,
			Rating:           math.Round((4.5+rng.Float64()*0.5)*10) / 10,
			ReviewCount:      int64(rng.IntN(100) + 20),
			Weight:           util.NullFloat64FromValue(float64(rng.IntN(50) + 10)),
			Dimensions: model.NullDimensions{
				Dimensions: model.Dimensions{
					Length: rng.IntN(100) + 50,
					Width:  rng.IntN(50) + 20,
					Height: rng.IntN(50) + 20,
				},
				Valid: true,
			},
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
		})
		if err != nil {
			return fmt.Errorf("creating product %s: %w", sp.slug, err)
		}
	}

	if _, err := q.CreateComment(ctx, CreateCommentParams{
		ArticleID: firstArticleID,
		AuthorID:  users[model.RoleUser].ID,
		Content:   seedComment,
		Approved:  true,
		CreatedAt: now,
	}); err != nil {
		return fmt.Errorf("creating comment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seed: %w", err)
	}

	slog.Info("seeded database",
		"users", len(seedUsers),
		"articles", len(seedArticles),
		"products", len(seedProducts),
	)
	return nil
}

func articleContent(a seedArticle) string {
	section, ok := categorySections[a.category]
	if !ok {
		section = "محتوى المقال التفصيلي..."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", a.title)
	b.WriteString("## المقدمة\n")
	fmt.Fprintf(&b, "هذا المقال يقدم معلومات شاملة حول %s، مع التركيز على التطبيقات العملية في قطاع المياه.\n\n", a.title)
	b.WriteString("## المحتوى الرئيسي\n")
	b.WriteString(section)
	b.WriteString("\n\n## الخلاصة\n")
	fmt.Fprintf(&b, "تعتبر %s من الجوانب الأساسية في إدارة وتشغيل أنظمة المياه، ويجب الاهتمام بها لضمان جودة وكفاءة العمليات.\n\n", a.tags[0])
	b.WriteString("## المراجع\n")
	b.WriteString("1. World Health Organization (WHO) Guidelines\n")
	b.WriteString("2. Environmental Protection Agency (EPA) Standards\n")
	b.WriteString("3. ISO 9001:2015 Quality Management Systems\n")
	return b.String()
}
