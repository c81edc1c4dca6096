package laravel

const studentsMigration = `<?php

use Illuminate\Database\Migrations\Migration;
use Illuminate\Database\Schema\Blueprint;
use Illuminate\Support\Facades\Schema;

return new class extends Migration
{
    public function up(): void
    {
        Schema::create('students', function (Blueprint $table) {
            $table->integer('id');
            $table->string('name')->nullable();
            $table->timestamps();
        });
    }

    public function down(): void
    {
        Schema::dropIfExists('students');
    }
};
`

const studentsRewriteMigration = `<?php

use Illuminate\Database\Migrations\Migration;
use Illuminate\Database\Schema\Blueprint;
use Illuminate\Support\Facades\Schema;

return new class extends Migration
{
    public function up(): void
    {
        Schema::create('students', function (Blueprint $table) {
            $table->uuid('uuid');
            $table->string('full_name');
        });
    }
};
`

const alterMigration = `<?php

use Illuminate\Database\Migrations\Migration;
use Illuminate\Database\Schema\Blueprint;
use Illuminate\Support\Facades\Schema;

return new class extends Migration
{
    public function up(): void
    {
        Schema::table('students', function (Blueprint $table) {
            $table->string('nickname');
        });
    }
};
`

const studentModel = `<?php

namespace App\Models;

use Illuminate\Database\Eloquent\Model;

class Student extends Model
{
    public function __construct(array $attributes = [])
    {
        parent::__construct($attributes);
    }

    public function school()
    {
        return $this->belongsTo('School');
    }

    public function graduate()
    {
        $this->graduated = true;
    }
}
`

const teacherModel = `<?php

namespace App\Models;

use Illuminate\Database\Eloquent\Model;
use Illuminate\Database\Eloquent\Relations\BelongsToMany;

class Teacher extends Model
{
    protected $table = 'staff';

    public function courses()
    {
        return $this->hasMany(Course::class, 'teacher_id');
    }

    public function office()
    {
        return $this->hasOne("Office");
    }

    public function subjects(): BelongsToMany
    {
        return $this->belongsToMany(Subject::class);
    }

    public function fullName()
    {
        return $this->first_name . ' ' . $this->last_name;
    }

    protected function secret()
    {
        return 'hidden';
    }

    public function __toString()
    {
        return $this->fullName();
    }
}
`
